package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "ribobook"
	DefaultMongoConnTimeout  = 10 * time.Second

	StorageDriverMongo = "mongo"
	StorageDriverFile  = "file"

	DefaultStorageDriver = StorageDriverMongo
	DefaultFileStorePath = "ribobook_bookings.json"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	// The source system shipped with this passphrase hardcoded in the
	// dashboard. It stays only as a development default.
	DefaultAdminPassphrase = "admin123"
	DefaultSessionTTL      = 30 * time.Minute

	DefaultSlotCapacity      = 4
	DefaultBookingCutoffDate = "2026-03-08"
	DefaultSweepInterval     = 60 * time.Second
	DefaultExpiryGrace       = 30 * time.Minute
	DefaultSupportPhone      = "917999895002"

	DefaultKafkaTopic = "ribobook.bookings"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
