/*
Package workers provides utilities for determining optimal worker pool sizes
in containerized environments.

When running in a container, the number of available CPUs may be limited by
cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit
automatically, while runtime.NumCPU() still reports the host machine's CPU
count. The helpers here size pools from GOMAXPROCS so the transcode pool
respects container resource limits.

# Basic Usage

	// Video encoding saturates a core; one worker per CPU.
	numWorkers := workers.ForCPU(8) // max 8 workers

For fine-grained control, use Count directly:

	numWorkers := workers.Count(1.5, 12)

# Environment Variable Override

All functions respect the TRANSCODE_WORKERS environment variable, allowing
operators to override the automatic calculation:

	env:
	- name: TRANSCODE_WORKERS
	  value: "4"

The limit argument still caps an override, so a misconfigured value cannot
exhaust the host.
*/
package workers
