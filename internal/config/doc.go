// Package config provides configuration structures and utilities for planecrash.
// It defines where the mirrored site and the data file live, how links and
// duplicate labels are treated, and how the yearly chart is reported.
package config
