package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/snapform/snapform-api/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DatabaseContainer is a disposable database server.
type DatabaseContainer struct {
	Container testcontainers.Container
	Config    *config.Config
}

type dbImage struct {
	image   string
	port    string
	dataDir string
	env     map[string]string
}

const (
	containerDatabase = "snapform"
	containerUser     = "snapform"
	containerPassword = "snapform-test"
)

var dbImages = map[string]dbImage{
	"postgres": {
		image:   "postgres:16-alpine",
		port:    "5432",
		dataDir: "/var/lib/postgresql/data",
		env: map[string]string{
			"POSTGRES_DB":       containerDatabase,
			"POSTGRES_USER":     containerUser,
			"POSTGRES_PASSWORD": containerPassword,
		},
	},
	"mysql": {
		image:   "mariadb:11",
		port:    "3306",
		dataDir: "/var/lib/mysql",
		env: map[string]string{
			"MARIADB_DATABASE":      containerDatabase,
			"MARIADB_USER":          containerUser,
			"MARIADB_PASSWORD":      containerPassword,
			"MARIADB_ROOT_PASSWORD": containerPassword,
		},
	},
}

// StartDatabase runs a database container of dbType (postgres or mysql) and
// returns a Config pointing at it.
func StartDatabase(ctx context.Context, dbType string) (*DatabaseContainer, error) {
	img, ok := dbImages[dbType]
	if !ok {
		return nil, fmt.Errorf("no container image for database type %q", dbType)
	}

	port, err := nat.NewPort("tcp", img.port)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	// throwaway data lives in memory
	hostConfigModifier := func(hostConfig *container.HostConfig) {
		hostConfig.Tmpfs = map[string]string{img.dataDir: "rw"}
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:              img.image,
			ExposedPorts:       []string{string(port)},
			Env:                img.env,
			HostConfigModifier: hostConfigModifier,
			WaitingFor:         wait.ForListeningPort(port).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", dbType, err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, err
	}
	mapped, err := ctr.MappedPort(ctx, port)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, err
	}

	return &DatabaseContainer{
		Container: ctr,
		Config: &config.Config{
			DBType:            dbType,
			DBHost:            host,
			DBPort:            mapped.Port(),
			DBDatabase:        containerDatabase,
			DBUser:            containerUser,
			DBPassword:        containerPassword,
			DBConnectionLimit: 5,
			CommitTimeout:     10 * time.Second,
		},
	}, nil
}

// Terminate stops and removes the container.
func (d *DatabaseContainer) Terminate(ctx context.Context) error {
	if d == nil || d.Container == nil {
		return nil
	}
	return d.Container.Terminate(ctx)
}
