package main

import (
	"github.com/spf13/pflag"

	"github.com/hnakamura/examdeck/internal/snapshot"
)

type FormatFlag snapshot.Format

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	format, err := snapshot.ParseFormat(v)
	if err != nil {
		return err
	}
	*f = FormatFlag(format)
	return nil
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

type ModeFlag snapshot.ImportMode

// Set implements pflag.Value.
func (m *ModeFlag) Set(v string) error {
	mode, err := snapshot.ParseImportMode(v)
	if err != nil {
		return err
	}
	*m = ModeFlag(mode)
	return nil
}

// String implements pflag.Value.
func (m *ModeFlag) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Type implements pflag.Value.
func (m *ModeFlag) Type() string {
	return "ModeFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
	_ pflag.Value = (*ModeFlag)(nil)
)
