package odatatest

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/ory/dockertest"
)

// DockerServiceConfig describes a throwaway container and how to build a
// client for it once it is reachable.
type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	Builder        func(host string, port int) (T, error)
}

func (config DockerServiceConfig[T]) env() []string {
	env := []string{}
	for key, value := range config.Environment {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

// GetDockerService starts the container, retries Builder until it succeeds
// and purges the container when the test ends. Skipped in short mode.
func GetDockerService[T any](t *testing.T, config DockerServiceConfig[T]) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping docker backed test in short mode.")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}

	if err := pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run(
		config.DockerImage,
		config.DockerImageTag,
		config.env(),
	)
	if err != nil {
		t.Fatalf("Could not start %s:%s: %s", config.DockerImage, config.DockerImageTag, err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge %s:%s: %s", config.DockerImage, config.DockerImageTag, err)
		}
	})

	host, port, err := serviceAddress(
		os.Getenv("DOCKER_HOST"),
		resource.GetHostPort(fmt.Sprintf("%d/tcp", config.InternalPort)),
	)
	if err != nil {
		t.Fatalf("Could not resolve service address: %s", err)
	}

	var service T
	if err := pool.Retry(func() error {
		var err error
		service, err = config.Builder(host, port)

		return err
	}); err != nil {
		t.Fatalf("Could not connect to %s:%s: %s", config.DockerImage, config.DockerImageTag, err)
	}

	return service
}

// serviceAddress prefers the host of a remote docker daemon over the
// published host port.
func serviceAddress(dockerHost string, hostPort string) (string, int, error) {
	published, err := url.Parse("tcp://" + hostPort)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(published.Port())
	if err != nil {
		return "", 0, err
	}

	host := published.Hostname()
	if dockerHost != "" {
		daemon, err := url.Parse(dockerHost)
		if err != nil {
			return "", 0, err
		}

		if daemon.Scheme == "tcp" && daemon.Hostname() != "" {
			host = daemon.Hostname()
		}
	}

	return host, port, nil
}
