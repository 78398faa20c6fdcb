package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/drive"
	"github.com/trezcool/prodigy/core/route"
)

var openFunc = os.Open // mockable

func (cli *commandLine) files(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Files); err != nil {
		return err
	}

	sub, args := subcommand(args, "list")
	switch sub {
	case "list":
		fs := cli.flagSet("files list")
		folder := fs.String("folder", "", "Folder id (top level when empty).")
		classID := fs.String("class", "", "List the files shared with a class instead of yours.")
		if err := parse(fs, args); err != nil {
			return err
		}
		filter := drive.Filter{FolderID: *folder, ClassID: *classID}
		folders, err := cli.driveSvc.Folders(ctx, filter)
		if err != nil {
			return cli.report("loading folders", err)
		}
		files, err := cli.driveSvc.Files(ctx, filter)
		if err != nil {
			return cli.report("loading files", err)
		}
		w := cli.newTable("ID", "NAME", "SIZE", "CREATED")
		for _, f := range folders {
			fmt.Fprintf(w, "%s\t%s/\t-\t%s\n", f.ID, f.Name, f.CreatedAt)
		}
		for _, f := range files {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Filename, f.HumanSize(), f.CreatedAt)
		}
		return w.Flush()

	case "upload":
		fs := cli.flagSet("files upload")
		path := fs.String("path", "", "Local file to upload.")
		folder := fs.String("folder", "", "Destination folder id.")
		classID := fs.String("class", "", "Share the file with a class.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *path); err != nil {
			return err
		}
		f, err := openFunc(*path)
		if err != nil {
			return errors.Wrap(err, "opening file")
		}
		defer f.Close()

		up, err := cli.driveSvc.Upload(ctx, drive.NewUpload{
			Filename: filepath.Base(*path),
			Content:  f,
			FolderID: *folder,
			ClassID:  *classID,
		})
		if err != nil {
			return cli.report("uploading file", err)
		}
		cli.notifier.Success(fmt.Sprintf("Uploaded %s (%s)", up.Filename, up.HumanSize()))
		return nil

	case "delete":
		fs := cli.flagSet("files delete")
		id := fs.String("id", "", "File id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.driveSvc.DeleteFile(ctx, *id); err != nil {
			return cli.report("deleting file", err)
		}
		cli.notifier.Success("File deleted")
		return nil

	case "mkdir":
		fs := cli.flagSet("files mkdir")
		name := fs.String("name", "", "Folder name.")
		parent := fs.String("parent", "", "Parent folder id.")
		classID := fs.String("class", "", "Share the folder with a class.")
		if err := parse(fs, args); err != nil {
			return err
		}
		folder, err := cli.driveSvc.CreateFolder(ctx, drive.NewFolder{Name: *name, ParentID: parent, ClassID: classID})
		if err != nil {
			return cli.report("creating folder", err)
		}
		cli.notifier.Success("Folder created: " + folder.Name)
		return nil

	case "rmdir":
		fs := cli.flagSet("files rmdir")
		id := fs.String("id", "", "Folder id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.driveSvc.DeleteFolder(ctx, *id); err != nil {
			return cli.report("deleting folder", err)
		}
		cli.notifier.Success("Folder deleted")
		return nil
	}
	return errHelp
}
