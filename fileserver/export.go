package fileserver

import (
	"context"
	"log"
	"time"
)

const queryInsertExport = `INSERT INTO
	exports(filename, outfit, bytes, ctime)
	VALUES ($1, $2, $3, $4)`

// saveExport records a served export. It is a no-op without a database.
func (server *Server) saveExport(filename, outfit string, size int) {
	if server.stmtInsertExport == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := server.stmtInsertExport.ExecContext(ctx, filename, outfit, size, server.now()); err != nil {
		log.Printf("failed to save export %s: %s", filename, err)
	}
}
