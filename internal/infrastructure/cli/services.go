package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/laborboard/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/felixgeelhaar/laborboard/pkg/storage"
)

// loadServices opens the board at root. A yaml, buntdb or sqlite board must have
// been initialized; the memory driver starts empty and is seeded on every run.
func loadServices(root string) (*wiring.AppServices, error) {
	initialized := boardInitialized(root)
	services, err := wiring.BuildAppServices(root)
	if err != nil {
		return nil, MapError(fmt.Errorf("failed to build services: %w", err))
	}

	if services.Workspace.Config.Storage.Driver == config.DriverMemory {
		if _, err := services.Labor.SeedCenters(); err != nil {
			_ = services.Close()
			return nil, err
		}
		return services, nil
	}
	if !initialized {
		_ = services.Close()
		return nil, MapError(errNotInitialized)
	}
	return services, nil
}

// boardInitialized reports whether init has written the board config.
func boardInitialized(root string) bool {
	_, err := os.Stat(filepath.Join(root, storage.DataDir, storage.ConfigFile))
	return err == nil
}

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(root)
}

// parseAt reads an optional --at value relative to the board's clock.
func parseAt(services *wiring.AppServices, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, ok := labor.ParseTimestamp(value, services.Clock())
	if !ok {
		return nil, MapError(fmt.Errorf("%w: %q", labor.ErrInvalidTime, value))
	}
	return &t, nil
}

// resolveEmployee accepts an employee ID or the name of a single active employee.
func resolveEmployee(services *wiring.AppServices, ref string) (labor.Employee, error) {
	e, err := services.Labor.GetEmployee(ref)
	if err == nil {
		return e, nil
	}

	active, listErr := services.Labor.ListEmployees(true)
	if listErr != nil {
		return labor.Employee{}, listErr
	}
	var matches []labor.Employee
	for _, a := range active {
		if strings.EqualFold(a.Name, strings.TrimSpace(ref)) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return labor.Employee{}, MapError(err)
	case 1:
		return matches[0], nil
	default:
		return labor.Employee{}, MapError(fmt.Errorf("%w %q", errAmbiguousEmployee, ref))
	}
}

func formatClock(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("15:04")
}
