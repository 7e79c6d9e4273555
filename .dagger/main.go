// ssecodec CI
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/ssecodec/internal/dagger"
)

// Ssecodec is the main module for the ssecodec CI pipeline
type Ssecodec struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new ssecodec CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", ".ssecodec"]
	source *dagger.Directory,
) *Ssecodec {
	return &Ssecodec{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled (for the sqlite publisher) and the project
// source mounted. An empty platform uses the engine's default.
func (s *Ssecodec) goContainer(platform dagger.Platform) *dagger.Container {
	ctr := dag.Container()
	if platform != "" {
		ctr = dag.Container(dagger.ContainerOpts{Platform: platform})
	}

	return ctr.
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", s.Source)
}

// Test runs the unit tests via "go test"
//
// +check
func (s *Ssecodec) Test(ctx context.Context) (string, error) {
	return s.goContainer("").
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}
