package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/contact-converter/pkg/utils"
)

const janeDoe = `<?xml version="1.0" encoding="UTF-8"?>
<c:contact c:Version="1" xmlns:c="http://schemas.microsoft.com/Contact">
	<c:NameCollection>
		<c:Name>
			<c:FormattedName>Jane Doe</c:FormattedName>
			<c:FamilyName>Doe</c:FamilyName>
			<c:GivenName>Jane</c:GivenName>
		</c:Name>
	</c:NameCollection>
	<c:EmailAddressCollection>
		<c:EmailAddress>
			<c:Address>a@x.com</c:Address>
			<c:LabelCollection><c:Label>Preferred</c:Label></c:LabelCollection>
		</c:EmailAddress>
		<c:EmailAddress>
			<c:Address>b@x.com</c:Address>
		</c:EmailAddress>
	</c:EmailAddressCollection>
</c:contact>`

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	fm := &utils.FileManager{Stdin: strings.NewReader(stdin), Stdout: &stdout, FileMode: 0o644}
	code := Run(args, fm, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeContact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCLI_JSONEndToEnd(t *testing.T) {
	path := writeContact(t, t.TempDir(), "jane.contact", janeDoe)

	res := runCLI(t, "", path)

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t,
		`[{"Name":[{"FormattedName":"Jane Doe","FamilyName":"Doe","GivenName":"Jane"}],`+
			`"Email":[{"Address":"a@x.com","Labels":["Preferred"]},{"Address":"b@x.com","Labels":[]}]}]`+"\n",
		res.stdout)
	assert.Empty(t, res.stderr)
}

func TestCLI_CSVEndToEnd(t *testing.T) {
	path := writeContact(t, t.TempDir(), "jane.contact", janeDoe)

	res := runCLI(t, "", "--csv", path)

	require.Equal(t, ExitOK, res.code, res.stderr)
	lines := strings.Split(res.stdout, "\n")
	assert.Equal(t, "FormattedName,GivenName,FamilyName,Email-Preferred,Email-1,Email-2,Email-3,Email-4", lines[0])
	assert.Equal(t, "Jane Doe,Jane,Doe,a@x.com,b@x.com,,,", lines[1])
}

func TestCLI_StdinAndOutputExtension(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "contacts.csv")

	res := runCLI(t, janeDoe, "-o", out, "-")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "FormattedName,GivenName,"))
}

func TestCLI_PrettyWithCSVIsUsageError(t *testing.T) {
	dir := t.TempDir()
	path := writeContact(t, dir, "jane.contact", janeDoe)
	out := filepath.Join(dir, "out.csv")

	res := runCLI(t, "", "--csv", "--pretty", "-o", out, path)

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "'--pretty' is only for json output")
	assert.Empty(t, res.stdout)
	assert.False(t, utils.FileExists(out))
}

func TestCLI_UsageErrors(t *testing.T) {
	path := writeContact(t, t.TempDir(), "jane.contact", janeDoe)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", nil, "the following arguments are required: file"},
		{"dialect with json", []string{"--json", "--csv-dialect", "excel", path}, "'--csv-dialect' is only for csv output"},
		{"two formats", []string{"--json", "--csv", path}, "only one of"},
		{"bad dialect", []string{"--csv-dialect", "semicolon", path}, "invalid csv dialect"},
		{"unknown flag", []string{"--yaml", path}, "unknown flag: --yaml"},
		{"missing input", []string{filepath.Join(t.TempDir(), "missing.contact")}, "can't open"},
		{"bad completion shell", []string{"--completion", "tcsh"}, "unsupported shell"},
		{"completion with files", []string{"--completion", "bash", path}, "'--completion' takes no input files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			assert.Equal(t, ExitUsage, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Contains(t, res.stderr, "usage: contactparser")
			assert.Empty(t, res.stdout)
		})
	}
}

func TestCLI_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	good := writeContact(t, dir, "good.contact", janeDoe)
	bad := writeContact(t, dir, "bad.contact", "<c:contact><c:NameCollection>")

	res := runCLI(t, "", good, bad)

	assert.Equal(t, ExitFailure, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "[!] "), res.stderr)
	assert.Contains(t, res.stderr, "parsing "+bad)
	assert.NotContains(t, res.stderr, "usage:")
	assert.Empty(t, res.stdout)
}

func TestCLI_TrailingGarbageIsParseError(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")
	truncated := writeContact(t, dir, "joined.contact", janeDoe+"<c:contact><c:NameCollection>")

	res := runCLI(t, "", "-o", out, truncated)

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "parsing "+truncated)
	assert.False(t, utils.FileExists(out))
}

func TestCLI_UnsupportedFormatFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeContact(t, dir, "jane.contact", janeDoe)
	cfg := writeContact(t, dir, "contactparser.yaml", "output:\n  format: vcard\n")

	res := runCLI(t, "", "--config", cfg, path)

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "can't generate a vcard - not implemented")
	assert.Empty(t, res.stdout)
}

func TestCLI_ConfigFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeContact(t, dir, "jane.contact", janeDoe)
	cfg := writeContact(t, dir, "contactparser.yaml", "output:\n  format: csv\n  csv_dialect: excel\n")

	res := runCLI(t, "", "--config", cfg, path)

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.True(t, strings.HasSuffix(res.stdout, "Jane Doe,Jane,Doe,a@x.com,b@x.com,,,\r\n"))
}

func TestCLI_VerboseWarnings(t *testing.T) {
	dir := t.TempDir()
	var emails strings.Builder
	for _, addr := range []string{"1@x", "2@x", "3@x", "4@x", "5@x"} {
		emails.WriteString("<EmailAddress><Address>" + addr + "</Address></EmailAddress>")
	}
	path := writeContact(t, dir, "many.contact",
		"<contact><EmailAddressCollection>"+emails.String()+"</EmailAddressCollection></contact>")

	quiet := runCLI(t, "", "--csv", path)
	require.Equal(t, ExitOK, quiet.code)
	assert.Empty(t, quiet.stderr)

	verbose := runCLI(t, "", "--csv", "-v", path)
	require.Equal(t, ExitOK, verbose.code)
	assert.Contains(t, verbose.stderr, "Too many email addresses. '5@x' will get lost")
	assert.NotContains(t, verbose.stderr, "parsing names")

	trace := runCLI(t, "", "--csv", "-vv", path)
	require.Equal(t, ExitOK, trace.code)
	assert.Contains(t, trace.stderr, "setting output format to csv (from flag)")
	assert.Contains(t, trace.stderr, "├── parsing names")
	assert.Equal(t, quiet.stdout, trace.stdout)
}

func TestCLI_Version(t *testing.T) {
	res := runCLI(t, "", "--version")

	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "Contact Converter\nVersion:    "+Version)
	assert.Contains(t, res.stdout, "Go Version: go")
}

func TestCLI_Completion(t *testing.T) {
	res := runCLI(t, "", "--completion", "bash")

	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "bash completion")
}

func TestCLI_XLSX(t *testing.T) {
	dir := t.TempDir()
	path := writeContact(t, dir, "jane.contact", janeDoe)
	out := filepath.Join(dir, "contacts.xlsx")

	res := runCLI(t, "", "-o", out, path)

	require.Equal(t, ExitOK, res.code, res.stderr)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}
