package controllers

import (
	"context"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/sirupsen/logrus"
)

// LabTimeRequest asks for a laboratory's available instrument time.
type LabTimeRequest struct {
	LabCode string `json:"lab_code"`
}

// LabTimeResponse reports a laboratory's available instrument time and quota status.
type LabTimeResponse struct {
	LabCode       string  `json:"lab_code"`
	AvailableTime float64 `json:"available_time"`
	QuotaStatus   string  `json:"quota_status,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// LockSweepRequest asks for a sweep of expired processing locks.
type LockSweepRequest struct{}

// LockSweepResponse reports the number of locks a sweep released.
type LockSweepResponse struct {
	Released int64  `json:"released"`
	Error    string `json:"error,omitempty"`
}

// GetLabTimeNATS is the NATS handler for looking up a laboratory's available instrument time.
func (s Server) GetLabTimeNATS(subject, reply string, request *LabTimeRequest) {
	log := log.WithFields(logrus.Fields{"context": "get lab time", "lab": request.LabCode})

	ctx := context.Background()
	response := LabTimeResponse{LabCode: request.LabCode}

	lab, err := db.GetLaboratory(ctx, s.GORMDB, request.LabCode)
	if err != nil {
		response.Error = err.Error()
	} else if lab == nil {
		response.Error = "laboratory not found"
	} else {
		response.AvailableTime = lab.GetAvailableTime()
		if lab.QuotaGroup != nil {
			response.QuotaStatus = lab.QuotaGroup.QuotaStatus()
		}
	}

	if err = s.NATSConn.Publish(reply, response); err != nil {
		log.Error(err)
	}
}

// SweepLocksNATS is the NATS handler for releasing processing locks past the absolute ceiling.
func (s Server) SweepLocksNATS(subject, reply string, request *LockSweepRequest) {
	log := log.WithFields(logrus.Fields{"context": "lock sweep"})

	ctx := context.Background()
	response := LockSweepResponse{}

	released, err := db.ReleaseExpiredLocks(ctx, s.GORMDB, time.Now())
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Released = released
		if released > 0 {
			log.Infof("released %d expired processing locks", released)
		}
	}

	if reply == "" {
		return
	}
	if err = s.NATSConn.Publish(reply, response); err != nil {
		log.Error(err)
	}
}
