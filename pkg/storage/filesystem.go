package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"gopkg.in/yaml.v3"
)

const DataDir = ".laborboard"
const EmployeesFile = "employees.yaml"
const CentersFile = "centers.yaml"
const ConfigFile = "config.yaml"
const AuditFile = "audit.jsonl"
const BuntFile = "laborboard.db"
const SQLiteFile = "laborboard.sqlite"

// FilesystemRepository keeps employees and revenue centers as YAML documents
// under the .laborboard directory of a workspace root.
type FilesystemRepository struct {
	mu          sync.Mutex
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the data directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, DataDir)
}

// ResolvePath ensures the path is within the .laborboard directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.Dir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", DataDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

func (r *FilesystemRepository) ListEmployees() ([]labor.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadEmployees()
}

func (r *FilesystemRepository) ListActiveEmployees() ([]labor.Employee, error) {
	all, err := r.ListEmployees()
	if err != nil {
		return nil, err
	}
	return labor.FilterActive(all), nil
}

func (r *FilesystemRepository) ListEmployeesByCenter(center string, activeOnly bool) ([]labor.Employee, error) {
	all, err := r.ListEmployees()
	if err != nil {
		return nil, err
	}
	return labor.FilterByCenter(all, center, activeOnly), nil
}

func (r *FilesystemRepository) GetEmployee(id string) (labor.Employee, error) {
	all, err := r.ListEmployees()
	if err != nil {
		return labor.Employee{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return e, nil
		}
	}
	return labor.Employee{}, fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
}

func (r *FilesystemRepository) CreateEmployee(e labor.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadEmployees()
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.ID == e.ID {
			return fmt.Errorf("employee %s already exists", e.ID)
		}
	}
	return r.saveEmployees(append(all, e))
}

func (r *FilesystemRepository) UpdateEmployee(e labor.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadEmployees()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == e.ID {
			all[i] = e
			return r.saveEmployees(all)
		}
	}
	return fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, e.ID)
}

func (r *FilesystemRepository) DeleteEmployee(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadEmployees()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			return r.saveEmployees(append(all[:i], all[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
}

func (r *FilesystemRepository) ListCenters() ([]labor.RevenueCenter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadCenters()
}

func (r *FilesystemRepository) GetCenter(name string) (labor.RevenueCenter, error) {
	all, err := r.ListCenters()
	if err != nil {
		return labor.RevenueCenter{}, err
	}
	for _, c := range all {
		if c.Name == name {
			return c, nil
		}
	}
	return labor.RevenueCenter{}, fmt.Errorf("%w: %s", labor.ErrCenterNotFound, name)
}

func (r *FilesystemRepository) CreateCenter(c labor.RevenueCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadCenters()
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.Name == c.Name {
			return fmt.Errorf("%w: %s", labor.ErrCenterExists, c.Name)
		}
	}
	return r.saveCenters(append(all, c))
}

func (r *FilesystemRepository) UpdateCenter(c labor.RevenueCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.loadCenters()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].Name == c.Name {
			all[i] = c
			return r.saveCenters(all)
		}
	}
	return fmt.Errorf("%w: %s", labor.ErrCenterNotFound, c.Name)
}

func (r *FilesystemRepository) loadEmployees() ([]labor.Employee, error) {
	var list []labor.Employee
	if err := r.loadYAML(EmployeesFile, &list); err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	sortEmployees(list)
	return list, nil
}

func (r *FilesystemRepository) saveEmployees(list []labor.Employee) error {
	if list == nil {
		list = []labor.Employee{}
	}
	if err := r.saveYAML(EmployeesFile, list); err != nil {
		return fmt.Errorf("failed to save employees: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) loadCenters() ([]labor.RevenueCenter, error) {
	var list []labor.RevenueCenter
	if err := r.loadYAML(CentersFile, &list); err != nil {
		return nil, fmt.Errorf("failed to load revenue centers: %w", err)
	}
	sortCenters(list)
	return list, nil
}

func (r *FilesystemRepository) saveCenters(list []labor.RevenueCenter) error {
	if list == nil {
		list = []labor.RevenueCenter{}
	}
	if err := r.saveYAML(CentersFile, list); err != nil {
		return fmt.Errorf("failed to save revenue centers: %w", err)
	}
	return nil
}

// loadYAML reads a data file into out. A missing file leaves out untouched.
func (r *FilesystemRepository) loadYAML(filename string, out interface{}) error {
	retryer := retry.New[[]byte](r.retryConfig)

	data, err := retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		path, err := r.ResolvePath(filename)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return yaml.Unmarshal(data, out)
}

func (r *FilesystemRepository) saveYAML(filename string, v interface{}) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	// Write to a sibling and rename so a watcher never sees a half-written file.
	tmp := path + ".tmp"
	// G306: Use 0600 for files
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
