package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCrontab(t *testing.T) {
	for _, def := range []string{
		"* * * * *",
		"*/5 * * * *",
		"0 4 * * *",
		"30 2 1 1 0",
		"0,30 * * * 1-5",
		"59 23 31 12 7",
	} {
		assert.NoError(t, ValidateCrontab(def), def)
	}

	for _, def := range []string{
		"",
		"* * * *",
		"* * * * * *",
		"60 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 8",
		"*/0 * * * *",
		"a b c d e",
	} {
		assert.Error(t, ValidateCrontab(def), def)
	}
}

func TestCreateJobRequestValidate(t *testing.T) {
	req := CreateJobRequest{Owner: "owner-1", ViewName: "sales_summary", CrontabDef: "0 4 * * *"}
	assert.NoError(t, req.Validate())

	missingOwner := req
	missingOwner.Owner = " "
	assert.Error(t, missingOwner.Validate())

	badView := req
	badView.ViewName = "no spaces allowed"
	assert.Error(t, badView.Validate())

	badCron := req
	badCron.CrontabDef = "often"
	assert.Error(t, badCron.Validate())
}
