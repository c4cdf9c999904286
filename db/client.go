package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Repo bundles the collection-backed repositories.
type Repo struct {
	Profiles *ProfileRepo
}

// GetRepo connects to mongo and returns the repositories. The database name
// is taken from the connection string.
func GetRepo(ctx context.Context, mongoURI string) (*Repo, error) {
	connStr, err := connstring.Parse(mongoURI)
	if err != nil {
		return nil, fmt.Errorf("connstring.Parse: %w", err)
	}

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	if err := cli.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	database := cli.Database(connStr.Database)

	return &Repo{
		Profiles: getProfileRepo(database),
	}, nil
}
