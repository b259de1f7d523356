package output

const summaryPurpose = `This file contains a packed representation of the entire repository's contents.
It is designed to be easily consumable by AI systems for analysis, code review,
or other automated processes.`

const summaryUsage = `- This file should be treated as read-only. Any changes should be made to the
  original repository files, not this packed version.
- When processing this file, use the file path to distinguish
  between different files in the repository.
- Be aware that this file may contain sensitive information. Handle it with
  the same level of security as you would the original repository.`

const summaryNotes = `- Some files may have been excluded based on .gitignore rules and Repopack's
  configuration.
- Binary files are not included in this packed representation.
- Files flagged by the security check are not included.`

const plainSeparator = "================================================================"
const plainLongSeparator = "================================================================================"

const plainTemplate = `{{ .Header }}

{{ sep }}
File Summary
{{ sep }}

Purpose:
--------
{{ .Purpose }}

File Format:
------------
The content is organized as follows:
1. This summary section
2. Repository information
3. Repository structure
4. Multiple file entries, each consisting of:
  a. A separator line (================)
  b. The file path (File: path/to/file)
  c. Another separator line
  d. The full contents of the file
  e. A blank line

Usage Guidelines:
-----------------
{{ .Usage }}

Notes:
------
{{ .Notes }}
{{ .Toggles }}
Additional Info:
----------------
{{- if .UserHeader }}
User Provided Header:
-----------------------
{{ .UserHeader }}
{{- end }}

For more information about Repopack, visit: https://github.com/yamadashy/repopack

{{ sep }}
Repository Structure
{{ sep }}
{{ .Tree }}

{{ sep }}
Repository Files
{{ sep }}
{{ range .Files }}
{{ sep }}
File: {{ .Path }}
{{ sep }}
{{ .Content }}
{{ end }}
{{- if .Instruction }}

{{ longSep }}
Instruction
{{ longSep }}
{{ .Instruction }}
{{- end }}
`

const xmlTemplate = `{{ .Header }}

<file_summary>
This section contains a summary of this file.

<purpose>
{{ .Purpose }}
</purpose>

<file_format>
The content is organized as follows:
1. This summary section
2. Repository information
3. Repository structure
4. Repository files, each consisting of:
  - File path as an attribute
  - Full contents of the file
</file_format>

<usage_guidelines>
{{ .Usage }}
</usage_guidelines>

<notes>
{{ .Notes }}
{{ .Toggles }}</notes>

<additional_info>
{{- if .UserHeader }}
<user_provided_header>
{{ .UserHeader }}
</user_provided_header>
{{- end }}

For more information about Repopack, visit: https://github.com/yamadashy/repopack
</additional_info>

</file_summary>

<repository_structure>
{{ .Tree }}
</repository_structure>

<repository_files>
This section contains the contents of the repository's files.
{{ range .Files }}
<file path="{{ attr .Path }}">
{{ .Content }}
</file>
{{ end }}
</repository_files>
{{- if .Instruction }}

<instruction>
{{ .Instruction }}
</instruction>
{{- end }}
`

const markdownTemplate = `{{ .Header }}

# File Summary

## Purpose
{{ .Purpose }}

## File Format
The content is organized as follows:
1. This summary section
2. Repository information
3. Repository structure
4. Multiple file entries, each consisting of:
  a. A header with the file path (## File: path/to/file)
  b. The full contents of the file in a code block

## Usage Guidelines
{{ .Usage }}

## Notes
{{ .Notes }}
{{ .Toggles }}
## Additional Info
{{- if .UserHeader }}

### User Provided Header
{{ .UserHeader }}
{{- end }}

For more information about Repopack, visit: https://github.com/yamadashy/repopack

# Repository Structure
` + "```" + `
{{ .Tree }}
` + "```" + `

# Repository Files
{{ range .Files }}
## File: {{ .Path }}
{{ fence .Content }}{{ lang .Path }}
{{ .Content }}
{{ fence .Content }}
{{ end }}
{{- if .Instruction }}

# Instruction
{{ .Instruction }}
{{- end }}
`
