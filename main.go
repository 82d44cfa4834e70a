package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"cadenza/artwork"
	"cadenza/audio"
	"cadenza/catalog"
	"cadenza/cmd"
	"cadenza/musicbrainz"
	"cadenza/playlist"
	"cadenza/scanner"
	"cadenza/tagger"
	"cadenza/types"
	"cadenza/xspf"
)

func main() {
	asciiArt := `
  ____          _
 / ___|__ _  __| | ___ _ __  ______ _
| |   / _` + "`" + ` |/ _` + "`" + ` |/ _ \ '_ \|_  / _` + "`" + ` |
| |__| (_| | (_| |  __/ | | |/ / (_| |
 \____\__,_|\__,_|\___|_| |_/___\__,_|
`

	var (
		server bool
		port   int

		dir            string
		out            string
		title          string
		workers        int
		maxDepth       int
		extensions     string
		followSymlinks bool
		includeHidden  bool

		file string

		playlistFile string

		edit        string
		setTitle    string
		setArtist   string
		setAlbum    string
		setGenre    string
		setYear     int
		setTrack    int
		clearFields string
		setCover    string
		removeCover bool

		cover string
		size  int

		lookup string
	)

	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")

	flag.StringVar(&dir, "dir", "", "Directory tree to catalog")
	flag.StringVar(&out, "out", "", "Output path (XSPF playlist for -dir, JPEG for -cover)")
	flag.StringVar(&title, "title", "", "Playlist title for -dir exports")
	flag.IntVar(&workers, "workers", 0, "Extraction workers for -dir (0 = one per CPU)")
	flag.IntVar(&maxDepth, "max-depth", 0, "Directory depth limit for -dir (0 = unlimited)")
	flag.StringVar(&extensions, "ext", "", "Comma-separated extension filter for -dir (default mp3,flac)")
	flag.BoolVar(&followSymlinks, "follow-symlinks", false, "Follow symlinked directories during -dir scans")
	flag.BoolVar(&includeHidden, "hidden", false, "Include hidden files and directories in -dir scans")

	flag.StringVar(&file, "file", "", "Audio file to inspect (prints metadata as JSON)")

	flag.StringVar(&playlistFile, "playlist", "", "XSPF playlist file to print")

	flag.StringVar(&edit, "edit", "", "Audio file whose tags to edit")
	flag.StringVar(&setTitle, "set-title", "", "Title to write with -edit")
	flag.StringVar(&setArtist, "set-artist", "", "Artist to write with -edit")
	flag.StringVar(&setAlbum, "set-album", "", "Album to write with -edit")
	flag.StringVar(&setGenre, "set-genre", "", "Genre to write with -edit")
	flag.IntVar(&setYear, "set-year", 0, "Year to write with -edit")
	flag.IntVar(&setTrack, "set-track", 0, "Track number to write with -edit")
	flag.StringVar(&clearFields, "clear", "", "Comma-separated tag fields to delete with -edit")
	flag.StringVar(&setCover, "set-cover", "", "Image file to embed as cover art with -edit")
	flag.BoolVar(&removeCover, "remove-cover", false, "Delete embedded cover art with -edit")

	flag.StringVar(&cover, "cover", "", "Audio file whose cover art to export")
	flag.IntVar(&size, "size", 0, "Bounding box for -cover export (0 = original size)")

	flag.StringVar(&lookup, "lookup", "", "MusicBrainz recording lookup, as artist/title")
	flag.Parse()

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	modes := 0
	for _, selected := range []bool{dir != "", file != "", playlistFile != "", edit != "", cover != "", lookup != ""} {
		if selected {
			modes++
		}
	}
	if modes == 0 {
		flag.Usage()
		return
	}
	if modes > 1 {
		log.Fatalf("Choose one mode at a time: -dir, -file, -playlist, -edit, -cover or -lookup")
	}

	switch {
	case dir != "":
		fmt.Print(asciiArt)
		runCatalog(dir, out, title, workers, scanOptionsFromFlags(maxDepth, extensions, followSymlinks, includeHidden))

	case file != "":
		runInspect(file)

	case playlistFile != "":
		runPlaylistPrint(playlistFile)

	case edit != "":
		update, err := tagUpdateFromFlags(setTitle, setArtist, setAlbum, setGenre, setYear, setTrack, clearFields, setCover, removeCover)
		if err != nil {
			log.Fatalf("Error: %s", err)
		}
		runEdit(edit, update)

	case cover != "":
		runCoverExport(cover, out, size)

	case lookup != "":
		runLookup(lookup)
	}
}

func scanOptionsFromFlags(maxDepth int, extensions string, followSymlinks, includeHidden bool) scanner.Options {
	opts := scanner.DefaultOptions()
	opts.MaxDepth = maxDepth
	opts.FollowSymlinks = followSymlinks
	opts.IncludeHidden = includeHidden

	if extensions != "" {
		var exts []string
		for _, ext := range strings.Split(extensions, ",") {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		if len(exts) > 0 {
			opts.Extensions = exts
		}
	}
	return opts
}

// tagUpdateFromFlags builds a TagUpdate from the -edit companion flags.
// flag.Visit reports only flags given on the command line, so an explicit
// -set-title "" clears the frame value without deleting the frame.
func tagUpdateFromFlags(setTitle, setArtist, setAlbum, setGenre string, setYear, setTrack int, clearFields, setCover string, removeCover bool) (tagger.TagUpdate, error) {
	var update tagger.TagUpdate

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "set-title":
			update.Title = tagger.Set(setTitle)
		case "set-artist":
			update.Artist = tagger.Set(setArtist)
		case "set-album":
			update.Album = tagger.Set(setAlbum)
		case "set-genre":
			update.Genre = tagger.Set(setGenre)
		case "set-year":
			update.Year = tagger.Set(strconv.Itoa(setYear))
		case "set-track":
			update.TrackNumber = tagger.Set(strconv.Itoa(setTrack))
		}
	})

	for _, name := range strings.Split(clearFields, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "title":
			update.Title = tagger.Clear()
		case "artist":
			update.Artist = tagger.Clear()
		case "album":
			update.Album = tagger.Clear()
		case "genre":
			update.Genre = tagger.Clear()
		case "year":
			update.Year = tagger.Clear()
		case "track", "tracknumber":
			update.TrackNumber = tagger.Clear()
		default:
			return update, fmt.Errorf("unknown tag field %q in -clear", name)
		}
	}

	if setCover != "" {
		data, err := os.ReadFile(setCover)
		if err != nil {
			return update, fmt.Errorf("cannot read cover image %s: %w", setCover, err)
		}
		update.Picture = &types.Picture{MIMEType: artwork.SniffMIME(data), Data: data}
	}
	update.RemovePicture = removeCover

	return update, nil
}

func runCatalog(root, out, title string, workers int, scanOpts scanner.Options) {
	var (
		barOnce sync.Once
		bar     *progressbar.ProgressBar
	)
	builder := catalog.NewBuilder(catalog.Options{
		Workers: workers,
		Progress: func(processed, total int, path string) {
			barOnce.Do(func() {
				bar = progressbar.Default(int64(total), "cataloging")
			})
			bar.Set(processed)
		},
	})

	result, err := builder.Build(context.Background(), root, scanOpts)
	if err != nil {
		log.Fatalf("Cannot catalog %s: %s", root, err)
	}

	report := result.Report()
	fmt.Printf("\nCataloged %d tracks: %d complete, %d partial, %d failed\n",
		len(result.Tracks), report.Succeeded, report.Partial, report.Failed)
	for _, failure := range report.Failures {
		fmt.Printf("  failed %s: %s\n", failure.Path, failure.Error)
	}
	for _, pathErr := range report.PathErrors {
		fmt.Printf("  unreadable %s: %s\n", pathErr.Path, pathErr.Error)
	}

	if out != "" {
		writeCatalogPlaylist(result, root, title, out)
		return
	}

	for _, track := range result.Tracks {
		label := filepath.Base(track.Path)
		if track.Title != "" {
			label = track.Title
			if track.Artist != "" {
				label = track.Artist + " - " + track.Title
			}
		}
		fmt.Printf("  %s (%s)\n", label, formatDuration(track.DurationSeconds))
	}
}

func writeCatalogPlaylist(result *catalog.Result, root, title, out string) {
	if title == "" {
		title = filepath.Base(root)
	}

	pl := playlist.New(title)
	for _, track := range result.Tracks {
		pl.Append(track.Path)
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Cannot create %s: %s", dir, err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("Cannot create %s: %s", out, err)
	}
	defer f.Close()

	byPath := make(map[string]*types.TrackRecord, len(result.Tracks))
	for i := range result.Tracks {
		byPath[result.Tracks[i].Path] = &result.Tracks[i]
	}
	resolve := func(path string) (*types.TrackRecord, bool) {
		record, ok := byPath[path]
		return record, ok
	}

	if err := xspf.Write(f, pl, resolve); err != nil {
		log.Fatalf("Cannot write playlist %s: %s", out, err)
	}
	fmt.Printf("Wrote playlist %s (%d entries)\n", out, len(result.Tracks))
}

func runInspect(path string) {
	record, err := audio.Extract(path, audio.Classify(path))
	if err != nil {
		log.Fatalf("Cannot inspect %s: %s", path, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Fatalf("Cannot render %s: %s", path, err)
	}
	fmt.Println(string(data))
}

func runPlaylistPrint(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Cannot read playlist %s: %s", path, err)
	}

	pl, err := xspf.Parse(data)
	if err != nil {
		log.Fatalf("Cannot parse playlist %s: %s", path, err)
	}

	entries := pl.Entries()
	fmt.Printf("%s (%d entries)\n", pl.Title, len(entries))
	for i, entry := range entries {
		fmt.Printf("%3d. %s\n", i+1, entry.TrackPath)
	}
}

func runEdit(path string, update tagger.TagUpdate) {
	if err := tagger.WriteTags(path, update); err != nil {
		log.Fatalf("Cannot update tags of %s: %s", path, err)
	}
	fmt.Printf("Updated tags of %s\n", path)
}

func runCoverExport(path, out string, size int) {
	record, err := audio.Extract(path, audio.Classify(path))
	if err != nil {
		log.Fatalf("Cannot inspect %s: %s", path, err)
	}
	if !record.HasCover() {
		log.Fatalf("No embedded cover art in %s", path)
	}

	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
	}
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("Cannot create %s: %s", out, err)
	}
	defer f.Close()

	if err := artwork.ExportJPEG(f, record.CoverArt, size); err != nil {
		log.Fatalf("Cannot export cover art from %s: %s", path, err)
	}
	fmt.Printf("Exported cover art to %s\n", out)
}

func runLookup(query string) {
	parts := strings.SplitN(query, "/", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		log.Fatalf("Lookup query must be artist/title")
	}
	artist := strings.TrimSpace(parts[0])
	recordingTitle := strings.TrimSpace(parts[1])

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := musicbrainz.NewClient()
	recordings, err := client.LookupRecording(ctx, artist, recordingTitle, 0)
	if err != nil {
		log.Fatalf("Recording lookup failed: %s", err)
	}
	if len(recordings) == 0 {
		fmt.Println("No recordings found")
		return
	}

	for _, rec := range recordings {
		line := fmt.Sprintf("%3d%%  %s - %s", rec.Score, rec.Artist(), rec.Title)
		if rec.LengthMillis > 0 {
			line += fmt.Sprintf(" (%s)", formatDuration(rec.DurationSeconds()))
		}
		if len(rec.Releases) > 0 {
			line += fmt.Sprintf("  [%s]", rec.Releases[0].Title)
		}
		fmt.Println(line)
	}
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
