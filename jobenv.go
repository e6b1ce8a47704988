package vcat

import (
	"bufio"
	"context"
	"strings"

	"github.com/mwantia/vcat/data"
)

// Batch scheduler variables harvested by JobMetadata. A variable ending in
// FILE names a file whose lines are joined into one value.
var JobEnvironmentVariables = []string{
	"PBS_O_HOST",
	"PBS_JOBID",
	"PBS_JOBNAME",
	"PBS_NODEFILE",
	"SLURM_SUBMIT_HOST",
	"SLURM_JOB_ID",
	"SLURM_JOB_NAME",
	"SLURM_JOB_NODELIST",
}

// JobMetadata returns one triple per job variable set in the environment.
func (s *Session) JobMetadata() ([]data.AVU, error) {
	avus := make([]data.AVU, 0)
	for _, key := range JobEnvironmentVariables {
		value, ok := s.getenv(key)
		if !ok {
			continue
		}

		attribute := key
		if strings.HasSuffix(key, "FILE") {
			lines, err := s.readLines(value)
			if err != nil {
				return nil, err
			}
			attribute = strings.ReplaceAll(key, "FILE", "LIST")
			value = strings.Join(lines, ",")
		}

		if value == "" {
			s.log.Warn("Ignoring empty job variable %s", key)
			continue
		}
		avus = append(avus, data.NewAVU(attribute, value))
	}
	return avus, nil
}

// AddJobMetadata attaches the job metadata of the environment to the items
// supplied by src.
func (s *Session) AddJobMetadata(ctx context.Context, src Source, opts ...BulkOption) error {
	avus, err := s.JobMetadata()
	if err != nil {
		return err
	}

	if len(avus) == 0 {
		s.log.Warn("No job environment variables found")
		return nil
	}

	opts = append(opts, WithCollectionAVUs(avus...), WithObjectAVUs(avus...))
	return s.SetMetadata(ctx, src, MetadataAdd, opts...)
}

func (s *Session) readLines(path string) ([]string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	return lines, scanner.Err()
}
