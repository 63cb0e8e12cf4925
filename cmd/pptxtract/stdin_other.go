//go:build !unix

package main

import "os"

// inputPending cannot poll pipes here; stdin is then only read when it is the
// sole source of inputs.
func inputPending(*os.File) bool { return false }
