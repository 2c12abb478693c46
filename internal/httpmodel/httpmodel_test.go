package httpmodel

import (
	"testing"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationValidate(t *testing.T) {
	valid := NewApplication{SampleCode: "ab-2026-001", LabCode: "xrdlab"}
	assert.NoError(t, valid.Validate())

	missingSample := NewApplication{LabCode: "xrdlab"}
	assert.Error(t, missingSample.Validate())

	badSample := NewApplication{SampleCode: "ab/2026", LabCode: "xrdlab"}
	assert.Error(t, badSample.Validate())

	missingLab := NewApplication{SampleCode: "ab-2026-001"}
	assert.Error(t, missingLab.Validate())
}

func TestNewApplicationToDBModel(t *testing.T) {
	application := NewApplication{SampleCode: "ab-2026-001", LabCode: "xrdlab"}.ToDBModel()

	assert.Equal(t, model.StatusSubmitted, application.Status)
	assert.Equal(t, model.DataStatusNoData, application.DataStatus)
	assert.Equal(t, 220, application.ExperimentTemp)

	withTemp := NewApplication{SampleCode: "s", LabCode: "l", ExperimentTemp: 100}.ToDBModel()
	assert.Equal(t, 100, withTemp.ExperimentTemp)

	assert.False(t, application.IgnoreQuotaLimit)
	overQuota := NewApplication{SampleCode: "s", LabCode: "l", IgnoreQuotaLimit: true}.ToDBModel()
	assert.True(t, overQuota.IgnoreQuotaLimit)
}

func TestProcessingRequestValidate(t *testing.T) {
	save := ProcessingRequest{Action: ActionSave}
	assert.NoError(t, save.Validate())

	rejected := ProcessingRequest{Action: ActionRejected}
	assert.NoError(t, rejected.Validate())

	unknown := ProcessingRequest{Action: "archive"}
	assert.Error(t, unknown.Validate())

	completedWithoutInstrument := ProcessingRequest{Action: ActionCompleted}
	assert.Error(t, completedWithoutInstrument.Validate())

	completed := ProcessingRequest{Action: ActionCompleted, Diffractometer: "apex-ii"}
	assert.NoError(t, completed.Validate())
}

func TestProcessingRequestDBProbes(t *testing.T) {
	request := ProcessingRequest{
		Action: ActionSave,
		Probes: []ProcessingProbe{
			{ProcStatus: model.ProcStatusSCNR, SampleType: "c"},
			{ProcStatus: model.ProcStatusTrash},
		},
	}

	probes := request.DBProbes()
	require.Len(t, probes, 2)
	assert.Equal(t, model.ProcStatusSCNR, probes[0].ProcStatus)
	assert.Equal(t, "c", probes[0].SampleType)
	assert.Equal(t, model.ProcStatusTrash, probes[1].ProcStatus)
}

func TestTransferRequestValidate(t *testing.T) {
	valid := TransferRequest{DonorID: "a", AcceptorID: "b", Hours: 5}
	assert.NoError(t, valid.Validate())

	assert.Error(t, TransferRequest{AcceptorID: "b", Hours: 5}.Validate())
	assert.Error(t, TransferRequest{DonorID: "a", Hours: 5}.Validate())
	assert.Error(t, TransferRequest{DonorID: "a", AcceptorID: "b", Hours: 0}.Validate())
	assert.Error(t, TransferRequest{DonorID: "a", AcceptorID: "b", Hours: -1}.Validate())
}
