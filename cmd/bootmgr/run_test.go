package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/R-ARM/GamepadTools/internal/boot"
	"github.com/R-ARM/GamepadTools/internal/config"
	"github.com/R-ARM/GamepadTools/internal/efivars"
	"github.com/ghodss/yaml"
	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDump = `{
    "version": 2,
    "variables": [
        {
            "name": "Boot0001",
            "guid": "8be4df61-93ca-11d2-aa0d-00e098032b8c",
            "attr": 7,
            "data": "010000000c004c0069006e0075007800000004010800000000007fff0400"
        },
        {
            "name": "Boot0002",
            "guid": "8be4df61-93ca-11d2-aa0d-00e098032b8c",
            "attr": 7,
            "data": "010000000c00570069006e0064006f007700730000000401080000000000"
        },
        {
            "name": "BootOrder",
            "guid": "8be4df61-93ca-11d2-aa0d-00e098032b8c",
            "attr": 7,
            "data": "01000200"
        }
    ]
}`

type testApp struct {
	*app
	fs      afero.Fs
	out     *bytes.Buffer
	reboots int
}

func newTestApp(t *testing.T) *testApp {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/vars.json", []byte(testDump), 0o644))

	ta := &testApp{fs: fs, out: &bytes.Buffer{}}
	ta.app = &app{
		conf: &config.Config{
			StoreFile:       "/vars.json",
			ScratchSize:     boot.DefaultScratchSize,
			FallbackLoaders: boot.DefaultFallbackLoaders,
			PathSeparator:   " ",
			Log:             logr.Discard(),
		},
		fs:  fs,
		out: ta.out,
		reboot: func() error {
			ta.reboots++
			return nil
		},
	}
	return ta
}

// Returns the BootNext payload saved in the dump, or nil if there is none
func (ta *testApp) bootNext(t *testing.T) []byte {
	store, err := efivars.LoadDump(ta.fs, "/vars.json")
	require.NoError(t, err)
	if v, found := store.Get(boot.BootNextVariable); found {
		return v.Data
	}
	return nil
}

func TestRunList(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.run(request{listOnly: true}))

	assert.Equal(t,
		"Detected the following UEFI boot entries:\n"+
			"- 0001: Linux, at: Hard Drive\n",
		ta.out.String(),
	)
	assert.Nil(t, ta.bootNext(t))
}

func TestRunListStructured(t *testing.T) {
	expected := []boot.Entry{{
		ID:          1,
		RawSuffix:   "0001",
		Description: "Linux",
		PathSummary: []string{"Hard Drive"},
		Attributes:  1,
	}}

	testCases := []struct {
		output    string
		unmarshal func([]byte, any) error
	}{
		{outputJSON, json.Unmarshal},
		{outputYAML, func(data []byte, v any) error { return yaml.Unmarshal(data, v) }},
	}

	for _, tc := range testCases {
		t.Run(tc.output, func(t *testing.T) {
			ta := newTestApp(t)
			require.NoError(t, ta.run(request{listOnly: true, output: tc.output}))

			entries := []boot.Entry{}
			require.NoError(t, tc.unmarshal(ta.out.Bytes(), &entries))
			assert.Equal(t, expected, entries)
		})
	}
}

func TestRunSelectByID(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.run(request{target: "Boot0001"}))

	assert.Equal(t, []byte{0x01, 0x00}, ta.bootNext(t))
	assert.Equal(t, 1, ta.reboots)
	assert.Contains(t, ta.out.String(), "Rebooting now...")
}

func TestRunSelectByPattern(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.run(request{pattern: "lin", noReboot: true}))

	assert.Equal(t, []byte{0x01, 0x00}, ta.bootNext(t))
	assert.Equal(t, 0, ta.reboots)
}

func TestRunDryRun(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.run(request{target: "1", dryRun: true}))

	assert.Contains(t, ta.out.String(), "Dry run: would write BootNext = 01 00\n")
	assert.Nil(t, ta.bootNext(t))
	assert.Equal(t, 0, ta.reboots)
}

func TestRunUnknownEntry(t *testing.T) {
	ta := newTestApp(t)

	// Boot0002 declares a longer device path than it carries and is dropped from the catalog
	err := ta.run(request{target: "2"})
	assert.ErrorIs(t, err, boot.ErrNoSuchEntry)

	err = ta.run(request{pattern: "windows"})
	assert.ErrorIs(t, err, boot.ErrNoSuchEntry)

	assert.Nil(t, ta.bootNext(t))
	assert.Equal(t, 0, ta.reboots)
}

func TestRunRebootFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.reboot = func() error { return errors.New("permission denied") }

	err := ta.run(request{target: "1"})
	assert.ErrorContains(t, err, "failed to reboot")
	assert.Equal(t, []byte{0x01, 0x00}, ta.bootNext(t))
}

func TestRunRejectsInvalidRequests(t *testing.T) {
	testCases := []struct {
		name string
		req  request
	}{
		{"Nothing Selected", request{}},
		{"ID And Pattern", request{target: "1", pattern: "linux"}},
		{"Invalid ID", request{target: "zz"}},
		{"Invalid Pattern", request{pattern: "("}},
		{"List With ID", request{listOnly: true, target: "0001"}},
		{"List With Pattern", request{listOnly: true, pattern: "linux"}},
		{"Unknown Output", request{listOnly: true, output: "xml"}},
		{"Structured Output Without List", request{target: "1", output: outputJSON}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)
			assert.Error(t, ta.run(tc.req))
			assert.Nil(t, ta.bootNext(t))
		})
	}
}

func TestRunMissingDump(t *testing.T) {
	ta := newTestApp(t)
	ta.conf.StoreFile = "/missing.json"
	assert.Error(t, ta.run(request{listOnly: true}))
}
