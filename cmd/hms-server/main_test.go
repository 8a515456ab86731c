package main

import "testing"

func TestCommandTree(t *testing.T) {
	root := serveCmd()
	if root.Use != "serve" {
		t.Errorf("serve command use = %q", root.Use)
	}
	if f := root.Flags().Lookup("migrations"); f == nil {
		t.Error("serve command is missing the --migrations flag")
	}

	mig := migrateCmd()
	var names []string
	for _, c := range mig.Commands() {
		names = append(names, c.Use)
	}
	want := map[string]bool{"up": false, "status": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("migrate is missing subcommand %q", n)
		}
	}

	seed := seedAdminCmd()
	if f := seed.Flags().Lookup("password"); f == nil {
		t.Error("seed-admin is missing the --password flag")
	}
}
