package mcpserver

// SelectorSyntaxContract describes the selector grammar and the mutation
// format that LLM consumers should follow when addressing and editing
// structural nodes.
const SelectorSyntaxContract = `# grafty Selector Syntax

A selector addresses one structural node (a Markdown heading, a Python
class, function, or method) inside an indexed file.

## Forms, tried in order

1. **Node id** — the short hex id shown in listings, e.g. ` + "`" + `a1b2c3d4e5f60718` + "`" + `.
   Exact match; ids stay stable while the node's file position is unchanged.
2. **Line range** — ` + "`" + `path:N` + "`" + ` or ` + "`" + `path:N-M` + "`" + ` with exactly one colon, e.g.
   ` + "`" + `docs/guide.md:14-30` + "`" + `. Resolves to nodes fully contained in the range.
   Multiple hits are returned as candidates, most specific (narrowest) first.
3. **Structural** — ` + "`" + `path:kind:name` + "`" + `, e.g. ` + "`" + `src/app.py:py_function:main` + "`" + `.
   Kinds: ` + "`" + `md_heading` + "`" + `, ` + "`" + `py_class` + "`" + `, ` + "`" + `py_function` + "`" + `, ` + "`" + `py_method` + "`" + `.
   Disambiguate nested nodes with a /-separated ancestor chain in the name
   position: ` + "`" + `src/app.py:py_method:Server/start` + "`" + `.
4. **Fuzzy name** — anything else is treated as a bare name and matched
   approximately against all node names; close matches are returned as
   candidates.

## Resolution statuses

- ` + "`" + `resolved` + "`" + ` — exactly one node; safe to act on.
- ` + "`" + `ambiguous` + "`" + ` — several nodes matched; pick one candidate (by id) and retry.
- ` + "`" + `not_found` + "`" + ` — nothing matched; the reason suggests nearby nodes or
  alternative selector forms.

## Mutation format

Patch tools take a JSON array of mutations:

` + "```" + `json
[
  {
    "file_path": "docs/guide.md",
    "operation_kind": "replace",
    "start_line": 14,
    "end_line": 30,
    "text": "## New section\n\nBody.\n",
    "description": "rewrite the section"
  }
]
` + "```" + `

## Rules

1. **Lines are 1-indexed and inclusive.** ` + "`" + `start_line` + "`" + ` must be <= ` + "`" + `end_line` + "`" + `.
2. **Operation kinds:** ` + "`" + `replace` + "`" + ` substitutes the range, ` + "`" + `insert` + "`" + ` places
   text before ` + "`" + `start_line` + "`" + ` (` + "`" + `end_line` + "`" + ` is ignored), ` + "`" + `delete` + "`" + ` removes
   the range (` + "`" + `text` + "`" + ` must be empty).
3. **Paths are relative to the workspace root** with forward slashes.
4. **Application is atomic across files:** every mutation succeeds or every
   file is rolled back to its pre-patch content.
5. **Preview first.** Call ` + "`" + `preview_patch` + "`" + ` and inspect the diffs before
   ` + "`" + `apply_patch` + "`" + `; a file that changed since preview fails the apply.
`
