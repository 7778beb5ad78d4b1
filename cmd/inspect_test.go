package cmd

import (
	"testing"
)

func TestInspectCommand(t *testing.T) {
	path, sessionID := fixtureDB(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "summary dump",
			args:    []string{"--db", path, "inspect", sessionID},
			wantErr: false,
		},
		{
			name:    "raw dump",
			args:    []string{"--db", path, "inspect", sessionID, "--raw"},
			wantErr: false,
		},
		{
			name:    "missing session id",
			args:    []string{"--db", path, "inspect"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCommand(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("inspect error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
