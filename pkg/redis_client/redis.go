package redis_client

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"

func Connect(address string, password string, database int) error {
	if address == "" {
		address = defaultConnectionAddress
	}

	options := &redis.Options{
		Addr: address,
		DB:   database,
	}
	if password != "" {
		options.Password = password
	}

	Client = redis.NewClient(options)

	return Client.Ping(context.Background()).Err()
}

func Disconnect() error {
	if Client == nil {
		return nil
	}

	return Client.Close()
}
