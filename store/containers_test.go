package store_test

import (
	"context"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// startMongo runs a single-node replica set so transactions and change
// streams are available, matching the production topology.
func startMongo(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcmongo.Run(ctx, "mongo:7", tcmongo.WithReplicaSet("rs0"))
	if err != nil {
		return nil, "", err
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		return container, "", err
	}
	return container, connStr, nil
}

func startRedis(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcredis.Run(ctx, "redis:7")
	if err != nil {
		return nil, "", err
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		return container, "", err
	}
	return container, connStr, nil
}
