//go:build llama

package engine

// cgo link directives for the in-process llama engine.
//   - rpath $ORIGIN lets the loader find libllama.so next to the binary (./bin).
//   - -L${SRCDIR}/../../bin finds libllama.so at link time.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
