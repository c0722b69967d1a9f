// Command gen_snapshots_table rewrites the snapshot table in README.md from
// the golden frames under test/integration/testdata/snapshots.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli"
)

const (
	startMarker = "<!-- SNAPSHOTS:START -->"
	endMarker   = "<!-- SNAPSHOTS:END -->"
)

type snapshot struct {
	name   string
	path   string
	digest string
}

func main() {
	app := cli.NewApp()
	app.Name = "gen_snapshots_table"
	app.Usage = "update the README snapshot table"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "readme",
			Usage: "Path to README file to update in place",
			Value: "README.md",
		},
		cli.StringFlag{
			Name:  "snapshots",
			Usage: "Snapshots directory",
			Value: filepath.Join("test", "integration", "testdata", "snapshots"),
		},
	}
	app.Action = func(c *cli.Context) error {
		items, err := readSnapshots(c.String("snapshots"))
		if err != nil {
			return err
		}
		return updateReadme(c.String("readme"), renderTable(items))
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func readSnapshots(dir string) ([]snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var items []snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") || strings.Contains(name, "_actual.") {
			continue
		}
		path := filepath.Join(dir, name)
		digest, err := readDigest(path)
		if err != nil {
			return nil, err
		}
		items = append(items, snapshot{
			name:   strings.TrimSuffix(name, ".txt"),
			path:   filepath.ToSlash(path),
			digest: digest,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].name < items[j].name })
	return items, nil
}

func readDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if _, digest, ok := strings.Cut(sc.Text(), "Digest: "); ok {
			return digest, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%s: no digest header", path)
}

func renderTable(items []snapshot) []byte {
	var buf bytes.Buffer
	buf.WriteString("| ROM | Frame digest |\n")
	buf.WriteString("| --- | --- |\n")
	for _, it := range items {
		fmt.Fprintf(&buf, "| [%s](%s) | `%s` |\n", it.name, it.path, it.digest)
	}
	return buf.Bytes()
}

func updateReadme(path string, table []byte) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	start := bytes.Index(content, []byte(startMarker))
	end := bytes.Index(content, []byte(endMarker))
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("markers not found in %s. Ensure %s and %s exist", path, startMarker, endMarker)
	}

	var out bytes.Buffer
	out.Write(content[:start+len(startMarker)])
	out.WriteString("\n")
	out.Write(table)
	out.Write(content[end:])

	return os.WriteFile(path, out.Bytes(), 0644)
}
