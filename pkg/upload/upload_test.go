package upload_test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/roster"
	"github.com/licencecheck/licencecheck/pkg/spreadsheetml"
	"github.com/licencecheck/licencecheck/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func testSnapshot() *licence.Snapshot {
	return licence.NewSnapshot(day, []*licence.DriverRecord{
		{ClientName: "SMITH, JOHN", LicenceNumber: "A1234-B5678-C9012", Class: "DZ", ExpiryDate: "2026-12-31", LicenceStatus: "LICENCED", MedicalDueDate: "2025-06-30", Comments: []string{"CORRECTIVE LENSES"}},
		{ClientName: "DOE, JANE", LicenceNumber: "B0000-C1111-D2222", Class: "G", ExpiryDate: "2027-01-01", LicenceStatus: "LICENCED"},
	})
}

func testRoster(t *testing.T, operatorID string) *roster.Roster {
	t.Helper()

	operators, err := roster.Parse(strings.NewReader("DepartmentID,DepartmentName,OperatorName,OperatorID,LicenceNo\n" +
		"10,Transit,John Smith," + operatorID + ",A1234B5678C9012\n"))
	require.NoError(t, err)

	return operators
}

func TestStagingRows(t *testing.T) {
	rows, err := upload.StagingRows(testSnapshot(), testRoster(t, "1234.0"))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		upload.StagingHeader,
		{"[u:1]", "1234", "2024-01-10", "2026-12-31", "DZ", "2025-06-30", "CORRECTIVE LENSES"},
		{"[u:1]", "UNKNOWN", "2024-01-10", "2027-01-01", "G", "", "NONE"},
	}, rows)
}

func TestStagingRows_DecimalOperatorID(t *testing.T) {
	_, err := upload.StagingRows(testSnapshot(), testRoster(t, "12.5"))

	assert.ErrorIs(t, err, upload.ErrDecimalOperatorID)
	assert.Contains(t, err.Error(), "1 row(s)")
}

func TestWriteStaging(t *testing.T) {
	directory := t.TempDir()

	path, err := upload.WriteStaging(directory, testSnapshot(), testRoster(t, "1234"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(directory, "ARIS_upload_2024-01-10.xml"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `ss:Name="Sheet1"`)

	rows, err := spreadsheetml.Decode(bytes.NewReader(contents))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "104:20", rows[0][6])
}

func TestPurgeStaging(t *testing.T) {
	directory := t.TempDir()
	for _, name := range []string{
		"ARIS_upload_2024-01-09.xml",
		"ARIS_upload_2024-01-09-processed.txt",
		"ARIS_upload_2024-01-10.xml",
		"ARIS_upload_2024-01-10-processed.txt",
		"ARIS_upload_2024-01-08.log",
		"runfile.bat",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(directory, name), []byte("x"), 0o644))
	}

	removed, err := upload.PurgeStaging(directory, day)
	require.NoError(t, err)

	assert.Len(t, removed, 2)
	assert.NoFileExists(t, filepath.Join(directory, "ARIS_upload_2024-01-09.xml"))
	assert.NoFileExists(t, filepath.Join(directory, "ARIS_upload_2024-01-09-processed.txt"))
	assert.FileExists(t, filepath.Join(directory, "ARIS_upload_2024-01-10.xml"))
	assert.FileExists(t, filepath.Join(directory, "ARIS_upload_2024-01-08.log"))
	assert.FileExists(t, filepath.Join(directory, "runfile.bat"))
}

func listen(t *testing.T) (string, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	address := listener.Addr().(*net.TCPAddr)

	return address.IP.String(), address.Port
}

func TestServerOnline(t *testing.T) {
	host, port := listen(t)

	online := &upload.Loader{Host: host, Port: port}
	assert.True(t, online.ServerOnline(context.Background()))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	offline := &upload.Loader{Host: "127.0.0.1", Port: closedPort, DialTimeout: 500 * time.Millisecond}
	assert.False(t, offline.ServerOnline(context.Background()))
}

func TestUpload_Unreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	loader := &upload.Loader{Directory: t.TempDir(), Host: "127.0.0.1", Port: port}
	result := loader.Upload(context.Background(), day)

	assert.False(t, result.ServerOnline)
	assert.False(t, result.Success)
	assert.Equal(t, []string{fmt.Sprintf("❌ Server unreachable: 127.0.0.1:%d", port)}, result.Failures)
}

func writeLoader(t *testing.T, script string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell loader stand-in needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "loader.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))

	return path
}

func TestUpload_Confirmed(t *testing.T) {
	host, port := listen(t)
	executable := writeLoader(t, `input="${12}"
echo "imported" > logs/run.txt
touch "${input%.xml}-processed.txt"
`)

	loader := &upload.Loader{
		Directory:    t.TempDir(),
		Executable:   executable,
		Host:         host,
		Port:         port,
		PollInterval: 10 * time.Millisecond,
	}
	result := loader.Upload(context.Background(), day)

	assert.True(t, result.Success, result.Failures)
	require.NotNil(t, result.ExitCode)
	assert.Zero(t, *result.ExitCode)
	assert.Empty(t, result.Failures)
	assert.FileExists(t, upload.ProcessedPath(loader.Directory, day))
}

func TestUpload_LoaderFailed(t *testing.T) {
	host, port := listen(t)
	executable := writeLoader(t, "exit 3\n")

	loader := &upload.Loader{
		Directory:    t.TempDir(),
		Executable:   executable,
		Host:         host,
		Port:         port,
		PollAttempts: 2,
		PollInterval: 10 * time.Millisecond,
	}
	result := loader.Upload(context.Background(), day)

	assert.True(t, result.ServerOnline)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"⚠️ No confirmation file generated", "⚠️ Loader exit code: 3"}, result.Failures)
}

func TestUpload_StaleLog(t *testing.T) {
	host, port := listen(t)
	executable := writeLoader(t, `input="${12}"
echo "imported" > logs/run.txt
touch "${input%.xml}-processed.txt"
`)

	loader := &upload.Loader{
		Directory:    t.TempDir(),
		Executable:   executable,
		Host:         host,
		Port:         port,
		PollInterval: 10 * time.Millisecond,
		Now:          func() time.Time { return time.Now().Add(time.Hour) },
	}
	result := loader.Upload(context.Background(), day)

	assert.False(t, result.Success)
	assert.Equal(t, []string{"⚠️ Loader log missing, empty, or stale"}, result.Failures)
}

func TestSummaryLog(t *testing.T) {
	directory := t.TempDir()
	summaries := filepath.Join(directory, "logs", "2022")
	require.NoError(t, os.MkdirAll(summaries, 0o755))

	var lines []string
	for i := 1; i <= 450; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	require.NoError(t, os.WriteFile(filepath.Join(summaries, "ARIS_upload_2024-01-10-2022-0001-Summary.txt"), []byte(strings.Join(lines, "\r\n")+"\r\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "logs", "other.txt"), []byte("other"), 0o644))

	summary, err := upload.SummaryLog(directory, day)
	require.NoError(t, err)

	got := strings.Split(summary, "\n")
	require.Len(t, got, 401)
	assert.Equal(t, "(…truncated… last 400 lines)", got[0])
	assert.Equal(t, "line 51", got[1])
	assert.Equal(t, "line 450", got[400])
}

func TestSummaryLog_Fallback(t *testing.T) {
	directory := t.TempDir()
	logs := filepath.Join(directory, "logs", "2021")
	require.NoError(t, os.MkdirAll(logs, 0o755))

	older := filepath.Join(logs, "old.txt")
	newer := filepath.Join(directory, "logs", "new.txt")
	require.NoError(t, os.WriteFile(older, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("new\n"), 0o644))
	require.NoError(t, os.Chtimes(older, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)))

	summary, err := upload.SummaryLog(directory, day)
	require.NoError(t, err)
	assert.Equal(t, "new", summary)

	summary, err = upload.SummaryLog(t.TempDir(), day)
	require.NoError(t, err)
	assert.Empty(t, summary)
}
