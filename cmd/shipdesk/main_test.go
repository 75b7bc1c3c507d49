package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"shipdesk-hq/gateway/internal/graphtest"
	"shipdesk-hq/gateway/pkg/cli"
	"shipdesk-hq/gateway/pkg/gateway"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		verbose = false
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = "1.2.3-test", "abc123"
	defer func() { Version, GitCommit = origVersion, origCommit }()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{"Shipdesk 1.2.3-test", "Git Commit: abc123", "Go Version: " + runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	if err := os.WriteFile(valid, []byte("server:\n  listen_address: \":8080\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("mail:\n  port: 70000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"valid file", []string{"validate", "--config", valid}, false},
		{"invalid file", []string{"validate", "--config", invalid}, true},
		{"missing file uses defaults", []string{"validate", "--config", filepath.Join(dir, "absent.yaml")}, false},
		{"runtime requires credentials", []string{"validate", "--config", valid, "--runtime"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"CLIENT_ID", "CLIENT_SECRET", "TENANT_ID", "SMTP_USER", "SMTP_PASS"} {
				t.Setenv(k, "")
			}
			validateFlags.runtime = false

			out, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(out, "Configuration valid") {
				t.Errorf("output = %q", out)
			}
		})
	}
}

func TestRenderCommand_HTML(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "submission.json")
	payload := `{"billingParty":{"name":"Acme Corp"},"containers":[{"containerNumber":"CNT1","quantity":2}]}`
	if err := os.WriteFile(input, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	htmlOut := filepath.Join(dir, "out.html")

	if _, err := execute(t, "render", "--input", input, "--html", htmlOut); err != nil {
		t.Fatalf("render error = %v", err)
	}

	html, err := os.ReadFile(htmlOut)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"Acme Corp", "CNT1"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestRenderCommand_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "submission.json")
	if err := os.WriteFile(input, []byte(`{"containers":`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "render", "--input", input, "--html", filepath.Join(dir, "out.html"))
	if err == nil {
		t.Fatal("render succeeded for malformed JSON")
	}
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Command != "render" {
		t.Errorf("error = %v, want a render command error", err)
	}
}

func TestListsCommand(t *testing.T) {
	srv := graphtest.NewServer("tenant", "client", "secret")
	defer srv.Close()
	srv.AddSite("contoso.sharepoint.com", "logistics", "site-1")
	srv.AddList("site-1", "list-bookings", "Bookings")
	srv.AddList("site-1", "list-clients", "Clients")

	t.Setenv("SHIPDESK_IDENTITY_AUTHORITY_URL", srv.URL())
	t.Setenv("SHIPDESK_LISTSTORE_BASE_URL", srv.GraphURL())
	t.Setenv("TENANT_ID", "tenant")
	t.Setenv("CLIENT_ID", "client")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("SHAREPOINT_SITE_HOST", "contoso.sharepoint.com")
	t.Setenv("SHAREPOINT_SITE_PATH", "logistics")

	tests := []struct {
		format string
		want   string
	}{
		{"text", "DISPLAY NAME  ID\nBookings      list-bookings\nClients       list-clients\n"},
		{"csv", "DISPLAY NAME,ID\nBookings,list-bookings\nClients,list-clients\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := execute(t, "lists", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--output", tt.format)
			if err != nil {
				t.Fatalf("lists error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestListTable(t *testing.T) {
	table := listTable{{DisplayName: "Bookings", ID: "list-bookings"}}.Table()
	if len(table.Rows) != 1 || table.Rows[0][0] != "Bookings" || table.Rows[0][1] != "list-bookings" {
		t.Errorf("Table() = %+v", table)
	}
	var _ cli.Tabular = listTable([]gateway.ListSummary{})
}
