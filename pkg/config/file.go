package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML defaults file (--config). It supplies defaults
// for a subset of the flags; values given on the command line always win.
type File struct {
	Workspace       string   `yaml:"workspace"`
	Visibility      string   `yaml:"visibility"`
	CopyConfigsFrom string   `yaml:"copy_configs_from"`
	Configs         []string `yaml:"configs"`
	ExtraConfigs    []string `yaml:"extra_configs"`
	CommitMessage   string   `yaml:"commit_message"`
	Build           *bool    `yaml:"build"`

	RepoCreateArgs []string `yaml:"gh_repo_create_args"`
	RepoCloneArgs  []string `yaml:"gh_repo_clone_args"`
	InitArgs       []string `yaml:"cargo_init_args"`
	BuildArgs      []string `yaml:"cargo_build_args"`
	CommitArgs     []string `yaml:"git_commit_args"`
	PushArgs       []string `yaml:"git_push_args"`
}

// LoadFile reads and strictly decodes a defaults file. Unknown keys are an
// error so typos do not silently drop settings.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &f, nil
}

// ApplyTo fills fields of opts that were not set on the command line.
// Forwarded argument lists from the file are used only when the
// corresponding flag supplied none, so flag lists are never reordered
// or interleaved with file values.
func (f *File) ApplyTo(opts *Options) {
	if opts.Workspace == "" {
		opts.Workspace = f.Workspace
	}
	if opts.Visibility == "" {
		opts.Visibility = f.Visibility
	}
	if opts.CopyConfigsFrom == "" {
		opts.CopyConfigsFrom = f.CopyConfigsFrom
	}
	if len(opts.Configs) == 0 {
		opts.Configs = f.Configs
	}
	if len(opts.ExtraConfigs) == 0 {
		opts.ExtraConfigs = f.ExtraConfigs
	}
	if opts.CommitMessage == "" {
		opts.CommitMessage = f.CommitMessage
	}
	if f.Build != nil && !opts.Build {
		opts.Build = *f.Build
	}

	if len(opts.Forward.RepoCreate) == 0 {
		opts.Forward.RepoCreate = f.RepoCreateArgs
	}
	if len(opts.Forward.RepoClone) == 0 {
		opts.Forward.RepoClone = f.RepoCloneArgs
	}
	if len(opts.Forward.Init) == 0 {
		opts.Forward.Init = f.InitArgs
	}
	if len(opts.Forward.Build) == 0 {
		opts.Forward.Build = f.BuildArgs
	}
	if len(opts.Forward.Commit) == 0 {
		opts.Forward.Commit = f.CommitArgs
	}
	if len(opts.Forward.Push) == 0 {
		opts.Forward.Push = f.PushArgs
	}
}
