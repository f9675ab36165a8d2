package config

const (
	EnvPrefix = "ESCROW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv = "ESCROW_APP_ENV"
	EnvPort   = "ESCROW_APP_PORT"

	EnvDBDSN  = "ESCROW_DB_DSN"
	EnvDBHost = "ESCROW_DB_HOST"
	EnvDBUser = "ESCROW_DB_USER"
	EnvDBName = "ESCROW_DB_NAME"

	EnvUseSQLite  = "ESCROW_USE_SQLITE"
	EnvSQLitePath = "ESCROW_SQLITE_PATH"

	EnvRedisURL = "ESCROW_REDIS_URL"

	EnvJWTSecret  = "ESCROW_JWT_SECRET"
	EnvJWTIssuer  = "ESCROW_JWT_ISSUER"
	EnvJWTExpMins = "ESCROW_JWT_EXPIRATION_MINUTES"

	EnvOwnerAccount    = "ESCROW_OWNER_ACCOUNT"
	EnvCustodyAccount  = "ESCROW_CUSTODY_ACCOUNT"
	EnvVerifierAccount = "ESCROW_VERIFIER_ACCOUNT"
	EnvTokenDecimals   = "ESCROW_TOKEN_DECIMALS"

	EnvSweepInterval = "ESCROW_SWEEP_INTERVAL"

	EnvGCPProjectID           = "ESCROW_GCP_PROJECT_ID"
	EnvPubSubMarketplaceTopic = "ESCROW_PUBSUB_MARKETPLACE_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
