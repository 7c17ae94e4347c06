package config

const EnvPrefix = "BOOKHAVEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BOOKHAVEN_DB_DSN"
	EnvDBHost = "BOOKHAVEN_DB_HOST"
	EnvDBUser = "BOOKHAVEN_DB_USER"
	EnvDBName = "BOOKHAVEN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
