package db

import (
	"context"
	"fmt"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetLaboratory looks up a laboratory by its code, loading its quota group along with it.
func GetLaboratory(ctx context.Context, db *gorm.DB, labCode string) (*model.Laboratory, error) {
	wrapMsg := fmt.Sprintf("unable to look up laboratory '%s'", labCode)

	var lab model.Laboratory
	err := db.WithContext(ctx).
		Preload("QuotaGroup").
		Where("lab_code = ?", labCode).
		First(&lab).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &lab, nil
}

// ListLaboratories lists every laboratory with its quota group loaded.
func ListLaboratories(ctx context.Context, db *gorm.DB) ([]*model.Laboratory, error) {
	wrapMsg := "unable to list the laboratories"

	var labs []*model.Laboratory
	err := db.WithContext(ctx).
		Preload("QuotaGroup").
		Order("name asc").
		Find(&labs).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return labs, nil
}

// GetDiffractometer looks up an instrument by its device name.
func GetDiffractometer(ctx context.Context, db *gorm.DB, deviceName string) (*model.Diffractometer, error) {
	wrapMsg := fmt.Sprintf("unable to look up diffractometer '%s'", deviceName)

	var device model.Diffractometer
	err := db.WithContext(ctx).
		Where("device_name = ?", deviceName).
		First(&device).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &device, nil
}
