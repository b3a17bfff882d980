package main

import (
	"github.com/kidandcat/badiri/internal/blob"
	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/db"
	"github.com/kidandcat/badiri/internal/session"
)

// configPath returns the config file named on the command line, or config.json.
func configPath(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return "config.json"
}

func storageOptions(c config.StorageConfig) db.Options {
	return db.Options{
		Driver:      c.Driver,
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		CSVDir:      c.CSVDir,
	}
}

func blobOptions(c config.BlobConfig) blob.Options {
	return blob.Options{
		Driver: blob.Driver(c.Driver),
		Root:   c.Root,
		S3: blob.S3Config{
			Region:    c.Region,
			Bucket:    c.Bucket,
			Endpoint:  c.Endpoint,
			Prefix:    c.Prefix,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			PathStyle: c.PathStyle,
		},
	}
}

func redisOptions(c config.SessionConfig) session.RedisOptions {
	return session.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		TTL:      c.TTL,
	}
}
