// Package loadtest runs the load generator against a real httpbin container.
package loadtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const httpbinImage = "mccutchen/go-httpbin:v2.15.0"

// HttpbinHarness manages an httpbin container standing in for the hello workload.
type HttpbinHarness struct {
	container testcontainers.Container
	URL       string
}

// NewHttpbinHarness starts the container and waits until /headers answers.
func NewHttpbinHarness(t *testing.T) (*HttpbinHarness, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        httpbinImage,
		ExposedPorts: []string{"8080/tcp"},
		WaitingFor: wait.ForHTTP("/headers").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start httpbin container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "8080")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	h := &HttpbinHarness{
		container: container,
		URL:       fmt.Sprintf("http://%s:%d", host, port.Int()),
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate httpbin container: %v", err)
		}
	})
	return h, nil
}
