package config

const (
	EnvPrefix = "EXPRESSKART"

	AppEnvDev = "dev"

	EnvAppEnv        = "EXPRESSKART_APP_ENV"
	EnvPort          = "EXPRESSKART_APP_PORT"
	EnvLogLevel      = "EXPRESSKART_LOG_LEVEL"
	EnvDBDSN         = "EXPRESSKART_DB_DSN"
	EnvDBHost        = "EXPRESSKART_DB_HOST"
	EnvDBUser        = "EXPRESSKART_DB_USER"
	EnvDBName        = "EXPRESSKART_DB_NAME"
	EnvRedisURL      = "EXPRESSKART_REDIS_URL"
	EnvJWTSecret     = "EXPRESSKART_JWT_SECRET"
	EnvJWTIssuer     = "EXPRESSKART_JWT_ISSUER"
	EnvJWTExpMins    = "EXPRESSKART_JWT_EXPIRATION_MINUTES"
	EnvExpressFee    = "EXPRESSKART_SHIPPING_EXPRESS_FEE"
	EnvStandardFee   = "EXPRESSKART_SHIPPING_STANDARD_FEE"
	EnvOrderNumberTZ = "EXPRESSKART_ORDER_NUMBER_TZ"
	EnvPubSubOrders  = "EXPRESSKART_PUBSUB_ORDERS_TOPIC"
	EnvGCPProjectID  = "EXPRESSKART_GCP_PROJECT_ID"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
