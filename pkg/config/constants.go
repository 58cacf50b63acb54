package config

// EnvPrefix is passed to envconfig; individual fields carry full names.
const EnvPrefix = "procure"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PROCURE_DB_DSN"
	EnvDBHost = "PROCURE_DB_HOST"
	EnvDBUser = "PROCURE_DB_USER"
	EnvDBName = "PROCURE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
