// Package stats records the per-file snapshot logs of a counting run and
// reads them back. A run writes one cumulative type count per processed
// file to "<base>.log" and, when timing is enabled, the cumulative elapsed
// seconds to "<base>_time.log". Both logs hold one number per line so they
// can be graphed against the implicit file index.
package stats
