package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"wordquiz"

	"github.com/joho/godotenv"
)

func main() {
	var (
		file     = flag.String("file", "", "Word list workbook (.xlsx, required unless -list)")
		files    = flag.String("files", "", "Comma-separated workbooks to pool (section mode)")
		start    = flag.Int("start", 0, "Start number (range mode)")
		end      = flag.Int("end", 0, "End number (range mode)")
		sections = flag.String("sections", "", "Comma-separated section names (section mode)")
		count    = flag.Int("questions", 10, "Number of questions per set")
		sets     = flag.Int("sets", 1, "Number of independent sets to generate")
		mode     = flag.String("mode", "en-ja", "Quiz mode (en-ja or ja-en)")
		outDir   = flag.String("out", "generated_pdfs", "Output directory for PDFs")
		fontsDir = flag.String("fonts", "fonts", "Directory with TrueType fonts")
		merge    = flag.String("merge", "", "Also write all sets merged into one PDF at this path")
		bundle   = flag.String("bundle", "", "Also write a zip of all sets at this path")
		seed     = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		dbPath   = flag.String("db", "", "Optional sqlite index to record the batch in")
		list     = flag.Bool("list", false, "List recent batches from -db and exit")
		verbose  = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	godotenv.Load()
	wordquiz.SetVerbose(*verbose)

	if *list {
		listBatches(*dbPath)
		return
	}

	quizMode, err := wordquiz.ParseMode(*mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	pool, baseName, err := loadPool(*file, *files)
	if err != nil {
		log.Fatalf("Failed to load word list: %v", err)
	}

	var criteria wordquiz.SelectionCriteria
	if *sections != "" {
		var names []string
		for _, s := range strings.Split(*sections, ",") {
			if s = strings.TrimSpace(s); s != "" {
				names = append(names, s)
			}
		}
		criteria = wordquiz.SectionCriteria{Sections: names}
	} else {
		criteria = wordquiz.RangeCriteria{Start: *start, End: *end}
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	styles := wordquiz.DefaultStyles(wordquiz.ResolveFont(*fontsDir))
	generator := wordquiz.NewSetGenerator(styles, rng)

	batch, err := generator.GenerateBatch(pool, wordquiz.GenerationRequest{
		BaseName:     baseName,
		Criteria:     criteria,
		Mode:         quizMode,
		NumQuestions: *count,
		NumSets:      *sets,
	})
	if err != nil {
		log.Fatalf("Failed to generate batch: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	for _, pair := range batch.Pairs {
		for _, doc := range []wordquiz.RenderedDocument{pair.Question, pair.Answer} {
			path := filepath.Join(*outDir, doc.Key)
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				log.Fatalf("Failed to write %s: %v", path, err)
			}
			fmt.Println(path)
		}
	}

	if *merge != "" {
		data, err := wordquiz.MergeBatch(batch)
		if err != nil {
			log.Fatalf("Failed to merge batch: %v", err)
		}
		if err := os.WriteFile(*merge, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", *merge, err)
		}
		fmt.Println(*merge)
	}

	if *bundle != "" {
		data, err := wordquiz.BundleBatch(batch)
		if err != nil {
			log.Fatalf("Failed to bundle batch: %v", err)
		}
		if err := os.WriteFile(*bundle, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", *bundle, err)
		}
		fmt.Println(*bundle)
	}

	if *dbPath != "" {
		recordBatch(*dbPath, batch, baseName, criteria.Describe())
	}
}

// loadPool reads one workbook, or pools several for section-mode requests.
func loadPool(file, files string) (*wordquiz.Table, string, error) {
	if files != "" {
		var tables []*wordquiz.Table
		var names []string
		for _, p := range strings.Split(files, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, "", err
			}
			label := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			t, err := wordquiz.LoadTable(data, label)
			if err != nil {
				return nil, "", err
			}
			tables = append(tables, t)
			names = append(names, label)
		}
		if len(tables) == 0 {
			return nil, "", fmt.Errorf("no workbooks given")
		}
		return wordquiz.PoolTables(tables...), strings.Join(names, ", "), nil
	}

	if file == "" {
		return nil, "", fmt.Errorf("use -file (or -files for section mode)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, "", err
	}
	label := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	t, err := wordquiz.LoadTable(data, label)
	if err != nil {
		return nil, "", err
	}
	return wordquiz.PoolTables(t), label, nil
}

func listBatches(dbPath string) {
	if dbPath == "" {
		log.Fatal("Use -db to point -list at an index database.")
	}
	db, err := wordquiz.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	batches, err := db.GetBatches(20)
	if err != nil {
		log.Fatalf("Failed to list batches: %v", err)
	}
	for _, b := range batches {
		fmt.Printf("%s  %s  %s  %s  %d問 x %d部  [%s]\n",
			b.CreatedAt.Format("2006-01-02 15:04:05"), b.ID, b.Source, b.Mode, b.NumQuestions, b.NumSets, b.Status)
	}
}

func recordBatch(dbPath string, batch *wordquiz.GenerationBatch, source, criteria string) {
	db, err := wordquiz.OpenDB(dbPath)
	if err != nil {
		log.Printf("Failed to open index database: %v", err)
		return
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Printf("Failed to create index tables: %v", err)
		return
	}
	if err := db.RecordBatch(batch, source, criteria); err != nil {
		log.Printf("Failed to record batch: %v", err)
	}
}
