//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	containerImage = "postgres:16-alpine"
	containerDB    = "clinictest"
	containerUser  = "testuser"
	containerPass  = "testpass"
)

// startPostgresContainer runs a throwaway postgres and returns its connection
// string together with a function that terminates it.
func startPostgresContainer(ctx context.Context) (string, func(), error) {
	ctr, err := tcpostgres.Run(ctx, containerImage,
		tcpostgres.WithDatabase(containerDB),
		tcpostgres.WithUsername(containerUser),
		tcpostgres.WithPassword(containerPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	terminate := func() {
		if ctr == nil {
			return
		}
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			fmt.Fprintf(os.Stderr, "terminate postgres container: %v\n", err)
		}
	}
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("run %s: %w", containerImage, err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("container connection string: %w", err)
	}
	return connStr, terminate, nil
}
