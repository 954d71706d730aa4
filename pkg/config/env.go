package config

const (
	EnvPrefix = "MEDKIT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "MEDKIT_APP_ENV"
	EnvPort       = "MEDKIT_APP_PORT"
	EnvDBDSN      = "MEDKIT_DB_DSN"
	EnvDBHost     = "MEDKIT_DB_HOST"
	EnvDBUser     = "MEDKIT_DB_USER"
	EnvDBName     = "MEDKIT_DB_NAME"
	EnvRedisURL   = "MEDKIT_REDIS_URL"
	EnvJWTSecret  = "MEDKIT_JWT_SECRET"
	EnvJWTIssuer  = "MEDKIT_JWT_ISSUER"
	EnvJWTExpMins = "MEDKIT_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
