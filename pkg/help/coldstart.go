package help

const ColdstartYAML = `# linkcheck Quick Start

methods:
  get: "Full GET request per link (default)"
  head: "HEAD only (fast, some servers reject it)"
  head-then-get: "HEAD first, upgrade to GET on 403/404/405"

output_modes:
  plain: "One colored line per broken link + summary (default)"
  json: "Machine-readable document with results and stats"

commands:
  check_file: |
    linkcheck check README.md

  check_tree: |
    linkcheck check "docs/**/*.md"

  check_site: |
    linkcheck check https://example.com/page.html

  check_stdin: |
    cat notes.txt | linkcheck check -

  with_fragments: |
    linkcheck check --include-fragments docs/

  with_cache: |
    linkcheck check --cache-file .linkcheck-cache docs/
    linkcheck cache show --cache-file .linkcheck-cache

  with_history: |
    linkcheck check --history docs/
    linkcheck history runs
    linkcheck history run --failed-only

exit_codes:
  0: "All links OK (or excluded)"
  1: "Configuration or usage error"
  2: "Broken links found"

cache_system:
  - "Verdicts keyed by URL without fragment"
  - "CSV snapshot: url,status_code,last_checked_epoch"
  - "Success entries honour --max-cache-age"
  - "Error entries honour --max-cache-age-error"
  - "Merge on load keeps the newer entry"

filter_order:
  - "1. Scheme not permitted -> excluded"
  - "2. exclude-path / exclude-file rule -> excluded"
  - "3. Private/loopback/link-local with flag on -> excluded"
  - "4. Include set non-empty and no match -> excluded"
  - "5. Any exclude regex match -> excluded"
  - "6. Otherwise accepted"

history_commands:
  runs: "List past runs with stats"
  run_id: "Show verdicts for a run (--failed-only to filter)"
`
