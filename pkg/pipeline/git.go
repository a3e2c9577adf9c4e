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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// RemoteSpec carries the clone parameters of a remote source descriptor.
type RemoteSpec struct {
	Location string
	Branch   string
	Shallow  bool
	Depth    int
}

// GitClient isolates the external version-control invocation so it can be
// faked in tests without running a real client. A clone, once started,
// runs to completion or failure; there is no timeout and no retry.
type GitClient interface {
	Clone(ctx context.Context, spec RemoteSpec, destination string) error
	SparseCheckout(ctx context.Context, destination string, paths []string) error
}

// ExecGitClient shells out to the git binary.
type ExecGitClient struct {
	logger *slog.Logger
}

// NewExecGitClient creates a git client backed by os/exec.
func NewExecGitClient(logger *slog.Logger) *ExecGitClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecGitClient{logger: logger}
}

// Clone runs git clone with shallow history unless disabled, restricted
// to the given branch when set.
func (g *ExecGitClient) Clone(ctx context.Context, spec RemoteSpec, destination string) error {
	args := []string{"clone"}
	if spec.Branch != "" {
		args = append(args, "--branch", spec.Branch)
	}
	if spec.Shallow && spec.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", spec.Depth))
	}
	args = append(args, spec.Location, destination)

	g.logger.Info("source.clone.start", "location", spec.Location, "destination", destination)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("git executable is required to materialize remote sources: %w", err)
		}
		return fmt.Errorf("clone %s: %w", spec.Location, err)
	}

	g.logger.Info("source.clone.success", "location", spec.Location, "destination", destination)
	return nil
}

// SparseCheckout restricts an existing checkout to the given paths. It is
// applied after the initial shallow clone.
func (g *ExecGitClient) SparseCheckout(ctx context.Context, destination string, paths []string) error {
	init := exec.CommandContext(ctx, "git", "-C", destination, "sparse-checkout", "init", "--cone")
	init.Stdout = os.Stdout
	init.Stderr = os.Stderr
	if err := init.Run(); err != nil {
		return fmt.Errorf("sparse-checkout init %s: %w", destination, err)
	}

	args := append([]string{"-C", destination, "sparse-checkout", "set"}, paths...)
	set := exec.CommandContext(ctx, "git", args...)
	set.Stdout = os.Stdout
	set.Stderr = os.Stderr
	if err := set.Run(); err != nil {
		return fmt.Errorf("sparse-checkout set %s: %w", destination, err)
	}
	return nil
}
