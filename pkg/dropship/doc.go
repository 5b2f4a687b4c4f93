// Package dropship coordinates single-file uploads to a stored server
// profile.
//
// A Dropship owns one upload slot: starting a new upload cancels any
// unfinished one, the way a drop target replaces its previous drop.
// Progress and outcome are reported through an optional EventHandler,
// invoked on the configured upload.Dispatcher.
//
// Example usage:
//
//	repo := store.NewFileRepository(path)
//	d := dropship.New(
//	    dropship.WithRepository(repo),
//	    dropship.WithLogger(logger),
//	)
//	task, err := d.UploadFile(ctx, "/tmp/shot.png")
//	if err != nil {
//	    return err
//	}
//	u, err := task.Wait(ctx)
package dropship
