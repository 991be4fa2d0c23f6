package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/tidwall/buntdb"
)

const (
	employeeKeyPrefix = "employee:"
	centerKeyPrefix   = "center:"
)

// BuntRepository stores records as JSON values in a buntdb file.
type BuntRepository struct {
	db *buntdb.DB
}

// OpenBuntRepository opens (or creates) the database at path. ":memory:" keeps it in memory.
func OpenBuntRepository(path string) (*BuntRepository, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb %s: %w", path, err)
	}
	return NewBuntRepository(db), nil
}

func NewBuntRepository(db *buntdb.DB) *BuntRepository {
	return &BuntRepository{db: db}
}

func (r *BuntRepository) Close() error {
	return r.db.Close()
}

func employeeKey(id string) string { return employeeKeyPrefix + id }
func centerKey(name string) string { return centerKeyPrefix + name }

func (r *BuntRepository) ListEmployees() ([]labor.Employee, error) {
	list := []labor.Employee{}
	err := r.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(employeeKeyPrefix+"*", func(key, value string) bool {
			var e labor.Employee
			if decodeErr = json.Unmarshal([]byte(value), &e); decodeErr != nil {
				decodeErr = fmt.Errorf("decode %s: %w", key, decodeErr)
				return false
			}
			list = append(list, e)
			return true
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	sortEmployees(list)
	return list, nil
}

func (r *BuntRepository) ListActiveEmployees() ([]labor.Employee, error) {
	all, err := r.ListEmployees()
	if err != nil {
		return nil, err
	}
	return labor.FilterActive(all), nil
}

func (r *BuntRepository) ListEmployeesByCenter(center string, activeOnly bool) ([]labor.Employee, error) {
	all, err := r.ListEmployees()
	if err != nil {
		return nil, err
	}
	return labor.FilterByCenter(all, center, activeOnly), nil
}

func (r *BuntRepository) GetEmployee(id string) (labor.Employee, error) {
	var e labor.Employee
	err := r.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(employeeKey(id))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(v), &e)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return labor.Employee{}, fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
	} else if err != nil {
		return labor.Employee{}, err
	}
	return e, nil
}

func (r *BuntRepository) CreateEmployee(e labor.Employee) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(employeeKey(e.ID)); err == nil {
			return fmt.Errorf("employee %s already exists", e.ID)
		}
		return setJSON(tx, employeeKey(e.ID), e)
	})
}

func (r *BuntRepository) UpdateEmployee(e labor.Employee) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(employeeKey(e.ID)); errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, e.ID)
		}
		return setJSON(tx, employeeKey(e.ID), e)
	})
}

func (r *BuntRepository) DeleteEmployee(id string) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(employeeKey(id))
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
		}
		return err
	})
}

func (r *BuntRepository) ListCenters() ([]labor.RevenueCenter, error) {
	list := []labor.RevenueCenter{}
	err := r.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(centerKeyPrefix+"*", func(key, value string) bool {
			var c labor.RevenueCenter
			if decodeErr = json.Unmarshal([]byte(value), &c); decodeErr != nil {
				decodeErr = fmt.Errorf("decode %s: %w", key, decodeErr)
				return false
			}
			list = append(list, c)
			return true
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue centers: %w", err)
	}
	sortCenters(list)
	return list, nil
}

func (r *BuntRepository) GetCenter(name string) (labor.RevenueCenter, error) {
	var c labor.RevenueCenter
	err := r.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(centerKey(name))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(v), &c)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return labor.RevenueCenter{}, fmt.Errorf("%w: %s", labor.ErrCenterNotFound, name)
	} else if err != nil {
		return labor.RevenueCenter{}, err
	}
	return c, nil
}

func (r *BuntRepository) CreateCenter(c labor.RevenueCenter) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(centerKey(c.Name)); err == nil {
			return fmt.Errorf("%w: %s", labor.ErrCenterExists, c.Name)
		}
		return setJSON(tx, centerKey(c.Name), c)
	})
}

func (r *BuntRepository) UpdateCenter(c labor.RevenueCenter) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(centerKey(c.Name)); errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", labor.ErrCenterNotFound, c.Name)
		}
		return setJSON(tx, centerKey(c.Name), c)
	})
}

func setJSON(tx *buntdb.Tx, key string, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, _, err = tx.Set(key, string(bs), nil)
	return err
}

