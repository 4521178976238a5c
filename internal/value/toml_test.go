package value

import (
	"errors"
	"fmt"
	"testing"

	"nucore/internal/diag"
)

func TestFromTOML(t *testing.T) {
	doc := `name = "nucore"
size = 3
ratio = 0.5

[server]
port = 8080
hosts = ["a", "b"]

[[plugins]]
tag = "widget"

[[plugins]]
tag = "frame"
`
	v, err := FromTOML(doc)
	if err != nil {
		t.Fatalf("FromTOML: %v", err)
	}
	r, ok := v.AsRecord()
	if !ok {
		t.Fatalf("top level must be a record, got %s", v.Kind())
	}
	if got := fmt.Sprint(r.Columns()); got != "[name size ratio server plugins]" {
		t.Errorf("columns = %s", got)
	}
	port, err := v.FollowCellPath(mustPath(t, "server.port"))
	if err != nil || port.String() != "8080" {
		t.Errorf("server.port = %s, %v", port, err)
	}
	tags, err := v.FollowCellPath(mustPath(t, "plugins.tag"))
	if err != nil || tags.String() != "[widget, frame]" {
		t.Errorf("plugins.tag = %s, %v", tags, err)
	}
	if got := v.Type().String(); got != "record<name: string, size: int, ratio: float, server: record<port: int, hosts: list<string>>, plugins: list<record<tag: string>>>" {
		t.Errorf("Type() = %s", got)
	}
}

func TestFromTOMLSyntaxError(t *testing.T) {
	_, err := FromTOML("name = \n")
	var d *diag.Diagnostic
	if !errors.As(err, &d) || d.Code != diag.ParseFailure {
		t.Fatalf("got %v, want parse failure", err)
	}
}
