package controllers

import (
	"net/http"
	"strconv"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PostFileProbe describes one probe in a posting manifest.
type PostFileProbe struct {
	Status         string `json:"status"`
	NeedToPost     bool   `json:"need_to_post"`
	Number         int    `json:"number"`
	PostSuccessful *bool  `json:"post_successful"`
}

// PostFileEntry describes one application in a posting manifest. The entry carries everything the
// posting pipeline needs to locate the raw data and deliver the reduced data to the client.
type PostFileEntry struct {
	Directory  string                   `json:"directory"`
	SampleCode string                   `json:"sample_code"`
	Client     string                   `json:"client"`
	Lab        string                   `json:"lab"`
	Operator   string                   `json:"operator"`
	AllPosted  bool                     `json:"all_posted"`
	Probes     map[string]PostFileProbe `json:"probes"`
}

// PostFileResult describes the posting pipeline's verdict for one application.
type PostFileResult struct {
	Sent     bool   `json:"sent"`
	SentPath string `json:"sent_path"`
}

// ExportPostFiles exports the posting manifest.
//
// swagger:route GET /v1/post-files post-files exportPostFiles
//
// # Export Posting Manifest
//
// Exports the manifest of completed applications whose reduced data is ready for delivery, keyed
// by application code. The posting pipeline consumes the manifest, delivers the data, and reports
// back through the import endpoint.
//
// responses:
//
//	200: postFilesResponse
//	500: internalServerErrorResponse
func (s Server) ExportPostFiles(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "exporting post files"})

	context := ctx.Request().Context()

	applications, err := db.ListPostableApplications(context, s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	manifest := make(map[string]PostFileEntry, len(applications))
	for _, application := range applications {
		entry := PostFileEntry{
			Directory:  application.RawDataDir,
			SampleCode: application.SampleCode,
			AllPosted:  false,
			Probes:     make(map[string]PostFileProbe, len(application.Probes)),
		}
		if application.Client != nil {
			entry.Client = application.Client.Username
		}
		if application.Lab != nil {
			entry.Lab = application.Lab.Name
		}
		if application.Operator != nil {
			entry.Operator = application.Operator.Username
		}

		for _, probe := range application.Probes {
			key := strconv.Itoa(probe.Number)
			if probe.ID != nil {
				key = *probe.ID
			}
			entry.Probes[key] = PostFileProbe{
				Status:         probe.ProcStatus,
				NeedToPost:     model.NeedToPost(probe.ProcStatus),
				Number:         probe.Number,
				PostSuccessful: nil,
			}
		}

		manifest[application.ApplicationCode] = entry
	}

	log.Debugf("exported %d applications for posting", len(manifest))

	return ctx.JSON(http.StatusOK, manifest)
}

// ImportPostFiles imports the posting pipeline's results.
//
// swagger:route POST /v1/post-files post-files importPostFiles
//
// # Import Posting Results
//
// Imports the posting pipeline's verdicts, keyed by application code. Every successfully sent
// application has its probes moved through the posted transition and its delivery path recorded.
// Codes that don't name an application with reduced data waiting are logged and skipped so a
// stale manifest can't corrupt the state machine.
//
// responses:
//
//	200: successMessageResponse
//	400: badRequestResponse
//	500: internalServerErrorResponse
func (s Server) ImportPostFiles(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "importing post files"})

	context := ctx.Request().Context()

	var results map[string]PostFileResult
	if err = ctx.Bind(&results); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	imported := 0
	for applicationCode, result := range results {
		if !result.Sent {
			continue
		}

		application, err := db.GetApplicationByCode(context, s.GORMDB, applicationCode)
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}
		if application == nil {
			log.Warnf("posting results name unknown application %s", applicationCode)
			continue
		}
		if application.DataStatus != model.DataStatusReduced {
			log.Warnf("application %s has no reduced data waiting, skipping posting result", applicationCode)
			continue
		}

		changed, err := db.MarkAllReducedProbesPosted(context, s.GORMDB, application)
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}

		application.ReducedDataDir = result.SentPath
		err = s.GORMDB.WithContext(context).
			Model(application).
			UpdateColumn("reduced_data_dir", result.SentPath).
			Error
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}

		if changed {
			s.publishEvent(applicationEvent(application), "email", "data", "published")
			imported++
		}
	}

	log.Infof("imported posting results for %d applications", imported)

	return model.SuccessMessage(ctx, "the posting results have been imported", http.StatusOK)
}
