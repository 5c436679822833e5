// Package mem reports process memory figures for build reports.
package mem
