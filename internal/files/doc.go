// Package files holds the file system helpers used around conversion.
//
// UploadStore keeps uploaded documents under random names for the length of
// one request and removes them afterwards. Discovery expands command line
// arguments into the text documents a batch conversion should read.
//
// Example usage:
//
//	store, err := files.NewUploadStore(cfg.Upload.Dir, logger)
//	path, err := store.Save(file, ".pdf")
//	defer store.Remove(path)
package files
