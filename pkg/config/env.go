package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvStorageDriver = "STORAGE_DRIVER"
	EnvFileStorePath = "FILE_STORE_PATH"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAdminPassphrase = "ADMIN_PASSPHRASE"
	EnvSessionTTL      = "SESSION_TTL"

	EnvSlotCapacity      = "SLOT_CAPACITY"
	EnvBookingCutoffDate = "BOOKING_CUTOFF_DATE"
	EnvSweepInterval     = "SWEEP_INTERVAL"
	EnvExpiryGrace       = "EXPIRY_GRACE"
	EnvSupportPhone      = "SUPPORT_PHONE"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
