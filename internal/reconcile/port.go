// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"

	"github.com/relaykit/codexbridge/lib/artifact"
)

// resolvePort picks the proxy port. A port recorded by a previous
// install is kept while it is either serving (our proxy, about to be
// restarted) or free, so the settings URL stays stable across
// re-installs. Otherwise the first free port in the scan range wins,
// and as a last resort the OS assigns one.
func (r *Reconciler) resolvePort(ctx context.Context) (int, error) {
	if previous, ok := artifact.ReadPort(r.target.ConfigPath); ok {
		if r.prober.Healthy(ctx, previous) || r.portFree(previous) {
			r.logger.Debug("keeping previous port", "port", previous)
			return previous, nil
		}
		r.logger.Info("previous port is taken by another process", "port", previous)
	}

	for offset := range r.config.PortScanAttempts {
		candidate := r.config.DefaultPort + offset
		if candidate > 65535 {
			break
		}
		if r.portFree(candidate) {
			return candidate, nil
		}
	}

	port, err := r.ephemeralPort()
	if err != nil {
		return 0, err
	}
	r.logger.Info("scan range exhausted, using an OS-assigned port", "port", port)
	return port, nil
}
