// Package dataprocessing parses the two downloaded source files into
// domain types: the IMF WEO tab-delimited bulk export and the iShares
// EMB holdings CSV.
package dataprocessing
