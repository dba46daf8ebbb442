package report

import "time"

func sampleReport() Report {
	project := ProjectReport{
		TSConfig:      "/project/tsconfig.json",
		RootDirectory: "/project",
		Aliases:       []string{"@helpers/*"},
		ConfigChanges: []ConfigChange{
			{Path: "/project/package.json", Key: "/type", Value: "module", Applied: true},
		},
		Files: []FileReport{
			{
				Path:    "src/main.ts",
				Changed: true,
				Rewrites: []Rewrite{
					{Line: 1, Column: 19, Kind: RewriteExtension, From: "'./util'", To: "'./util.js'"},
					{Line: 2, Column: 18, Kind: RewriteAttribute, From: "'./data.json'", To: "'./data.json' with { type: 'json' }"},
				},
			},
			{
				Path:     "src/legacy.js",
				Changed:  true,
				CommonJS: &CommonJS{Requires: 2, Exports: 1},
			},
			{Path: "src/clean.ts"},
			{Path: "src/broken.ts", Error: "stat src/missing.ts: permission denied"},
		},
		Warnings: []string{"src/broken.ts: stat src/missing.ts: permission denied"},
	}
	project.Summary = ComputeSummary(project.Files)
	return Merge([]ProjectReport{project}, false, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
}
