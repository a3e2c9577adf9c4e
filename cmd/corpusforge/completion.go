// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/corpusforge/internal/errors"
)

// bashCompletionTemplate is the bash completion script for corpusforge.
//
// It provides command and flag completion for bash shells using the
// bash completion framework.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for corpusforge
# Installation:
#   source <(corpusforge completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(corpusforge completion bash)' >> ~/.bashrc

_corpusforge_completion() {
    local cur prev commands
    commands="init build status completion"

    # Current word being completed
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Global flags
    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--version --config" -- ${cur}) )
        return 0
    fi

    # First argument: complete commands
    if [ $COMP_CWORD -eq 1 ]; then
        COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        return 0
    fi

    # Command-specific flag completion
    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        init)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--dir --output --force" -- ${cur}) )
            fi
            ;;
        build)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--workspace --compress --json --debug --metrics-addr" -- ${cur}) )
            fi
            ;;
        status)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--json" -- ${cur}) )
            fi
            ;;
        completion)
            # Complete shell names for completion command
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _corpusforge_completion corpusforge
`

// zshCompletionTemplate is the zsh completion script for corpusforge.
//
// It provides command and flag completion for zsh shells using the
// zsh completion system.
const zshCompletionTemplate = `#compdef corpusforge

# Zsh completion script for corpusforge
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      corpusforge completion zsh > "${fpath[1]}/_corpusforge"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_corpusforge() {
    local -a commands
    commands=(
        'init:Create a starter dataset.yaml configuration'
        'build:Assemble the dataset from the configured sources'
        'status:Show statistics of the last build'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to configuration document]:config file:_files -g "*.yaml"' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                init)
                    _arguments \
                        '--dir[Project directory]:directory:_files -/' \
                        '--output[Output directory recorded in the configuration]:directory:_files -/' \
                        '--force[Overwrite an existing configuration file]'
                    ;;
                build)
                    _arguments \
                        '--workspace[Scratch directory for remote checkouts]:directory:_files -/' \
                        '--compress[Gzip the split files]' \
                        '--json[Output result as JSON]' \
                        '--debug[Enable debug logging]' \
                        '--metrics-addr[Prometheus metrics address]:address:'
                    ;;
                status)
                    _arguments \
                        '--json[Output as JSON]'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_corpusforge
`

// fishCompletionTemplate is the fish completion script for corpusforge.
//
// It provides command and flag completion for fish shells using the
// fish completion system.
const fishCompletionTemplate = `# Fish completion script for corpusforge
# Installation:
#   1. Load completions for current session:
#      corpusforge completion fish | source
#   2. Install permanently:
#      corpusforge completion fish > ~/.config/fish/completions/corpusforge.fish

# Commands
complete -c corpusforge -f -n "__fish_use_subcommand" -a "init" -d "Create a starter dataset.yaml configuration"
complete -c corpusforge -f -n "__fish_use_subcommand" -a "build" -d "Assemble the dataset from the configured sources"
complete -c corpusforge -f -n "__fish_use_subcommand" -a "status" -d "Show statistics of the last build"
complete -c corpusforge -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global flags
complete -c corpusforge -l version -d "Show version and exit"
complete -c corpusforge -l config -d "Path to configuration document" -r

# init command flags
complete -c corpusforge -n "__fish_seen_subcommand_from init" -l dir -d "Project directory" -r
complete -c corpusforge -n "__fish_seen_subcommand_from init" -l output -d "Output directory recorded in the configuration" -r
complete -c corpusforge -n "__fish_seen_subcommand_from init" -l force -d "Overwrite an existing configuration file"

# build command flags
complete -c corpusforge -n "__fish_seen_subcommand_from build" -l workspace -d "Scratch directory for remote checkouts" -r
complete -c corpusforge -n "__fish_seen_subcommand_from build" -l compress -d "Gzip the split files"
complete -c corpusforge -n "__fish_seen_subcommand_from build" -l json -d "Output result as JSON"
complete -c corpusforge -n "__fish_seen_subcommand_from build" -l debug -d "Enable debug logging"
complete -c corpusforge -n "__fish_seen_subcommand_from build" -l metrics-addr -d "Prometheus metrics address" -r

# status command flags
complete -c corpusforge -n "__fish_seen_subcommand_from status" -l json -d "Output as JSON"

# completion command arguments
complete -c corpusforge -n "__fish_seen_subcommand_from completion" -f -a "bash" -d "Generate bash completion script"
complete -c corpusforge -n "__fish_seen_subcommand_from completion" -f -a "zsh" -d "Generate zsh completion script"
complete -c corpusforge -n "__fish_seen_subcommand_from completion" -f -a "fish" -d "Generate fish completion script"
`

// runCompletion executes the 'completion' CLI command, generating shell-specific
// completion scripts for bash, zsh, or fish shells.
//
// Usage:
//
//	corpusforge completion [bash|zsh|fish]
//
// Examples:
//
//	corpusforge completion bash                Output bash completion script
//	source <(corpusforge completion bash)      Load bash completions in current shell
//	corpusforge completion fish | source       Load fish completions in current shell
func runCompletion(args []string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: corpusforge completion <shell>

Description:
  Generate shell completion scripts for bash, zsh, or fish.

  Shell completions allow you to use Tab to autocomplete commands,
  flags, and arguments.

Arguments:
  shell    Shell type: bash, zsh, or fish (required)

Examples:
  # Load bash completions in current shell
  source <(corpusforge completion bash)

  # Install bash completions permanently (Linux)
  corpusforge completion bash > /etc/bash_completion.d/corpusforge

  # Install zsh completions
  corpusforge completion zsh > "${fpath[1]}/_corpusforge"

  # Install fish completions
  corpusforge completion fish > ~/.config/fish/completions/corpusforge.fish

Notes:
  After installing completions, restart your shell or source your rc file.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	// Validate arguments
	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'corpusforge completion bash', 'corpusforge completion zsh', or 'corpusforge completion fish'",
		), false)
	}

	shell := fs.Arg(0)

	// Generate completion script for the specified shell
	switch shell {
	case "bash":
		fmt.Print(bashCompletionTemplate)
	case "zsh":
		fmt.Print(zshCompletionTemplate)
	case "fish":
		fmt.Print(fishCompletionTemplate)
	default:
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", shell),
			"Run 'corpusforge completion bash', 'corpusforge completion zsh', or 'corpusforge completion fish'",
		), false)
	}
}
