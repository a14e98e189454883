package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishad/tcgaimport/internal/checksum"
	"github.com/nishad/tcgaimport/internal/emit"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <request.json>...",
	Short: "Verify mirrored archives against their .md5 files",
	Long: `Check every archive named by the requests' provenance against the md5
sum stored next to it in the mirror. Each archive is reported as OK,
CORRUPT, NOT_FOUND or MD5_NOT_FOUND.

With --delete, corrupt archives and their .md5 files are removed so a
later download can fetch them again.`,
	Example: `  tcgaimport checksum request.json
  tcgaimport checksum --delete requests/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChecksum,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <artifact.json>...",
	Short: "Check emitted artifacts against their recorded md5",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

var checksumDelete bool

func init() {
	checksumCmd.Flags().BoolVar(&checksumDelete, "delete", false, "Delete corrupt archives from the mirror")
}

func runChecksum(cmd *cobra.Command, args []string) error {
	reqs, err := loadRequests(args)
	if err != nil {
		return err
	}

	checker := checksum.New(newFetcher(), checksumDelete, logger)
	bad := 0
	for _, req := range reqs {
		results, err := checker.Request(cmd.Context(), req)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Status == checksum.StatusOK {
				printSuccess("%s", r)
				continue
			}
			bad++
			printWarning("%s", r)
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d archives failed verification", bad)
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	bad := 0
	for _, path := range args {
		v, err := emit.Verify(path)
		if err != nil {
			printError("%s: %v", path, err)
			bad++
			continue
		}
		if !v.OK() {
			printWarning("%s: md5 %s, recorded %s", v.DataPath, v.Actual, v.Recorded)
			bad++
			continue
		}
		printSuccess("%s", v.DataPath)
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d artifacts failed verification", bad, len(args))
	}
	return nil
}
