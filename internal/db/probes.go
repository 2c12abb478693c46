package db

import (
	"context"
	"fmt"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SaveProcessedProbes replaces an application's probe set with the probes submitted from the
// processing workflow. The incoming probes are renumbered densely from 1 in the order given, the
// derived cell volume is refreshed wherever the lattice parameters are complete, and probe rows
// that the submission no longer contains are deleted. The whole replacement runs in one
// transaction so a failed save never leaves a half-renumbered set.
func SaveProcessedProbes(ctx context.Context, db *gorm.DB, application *model.Application, probes []model.Probe) ([]model.Probe, error) {
	wrapMsg := fmt.Sprintf("unable to save the probes of application '%s'", application.ApplicationCode)

	keep := make([]interface{}, 0, len(probes))
	for i := range probes {
		probes[i].ApplicationID = application.ID
		probes[i].Number = i + 1
		if err := probes[i].RefreshVolume(); err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		if probes[i].ID != nil {
			keep = append(keep, *probes[i].ID)
		}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed := tx.Where("application_id = ?", application.ID)
		if len(keep) != 0 {
			removed = removed.Where("id NOT IN ?", keep)
		}
		if err := removed.Delete(&model.Probe{}).Error; err != nil {
			return err
		}

		for i := range probes {
			if err := tx.Save(&probes[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	application.Probes = probes
	return probes, nil
}
