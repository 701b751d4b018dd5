// ledgerctl tareas operativas del stock ledger: migraciones, conciliación y tokens de desarrollo.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
