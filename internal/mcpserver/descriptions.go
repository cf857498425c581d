package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeFindUnused() string {
	return `Finds ZK ViewModel classes and ViewModel methods that nothing in the project uses.

USE WHEN:
- Cleaning up a ZK web application before a refactoring
- Checking whether a ViewModel method is safe to delete
- Reviewing a change that removed or renamed ZUL templates

INTERPRETING RESULTS:
- unused_view_models: classes never bound in a template, never instantiated
  or referenced from Java, and with no used method. Safe to delete as a whole
  after checking reflection-based wiring outside the project.
- unused_methods: public methods of ViewModels that are otherwise in use.
  Each entry has the file, declaration line and annotations.
- Methods annotated with lifecycle hooks (@Init, @AfterCompose, @Destroy) or
  listed in the ignore file are always treated as used.
- Includes whose path is only known at runtime are matched by file name
  suffix; disable with partial_match=false for a stricter result.

METRICS RETURNED:
- Summary: total ViewModels and methods, unused counts, Java files analyzed
  and skipped, templates scanned`
}

func describeExplain() string {
	return `Shows the usage evidence vmsweep found for one ViewModel class.

USE WHEN:
- A finding looks wrong and you need to see why a method counts as used or unused
- Checking which template or Java channel keeps a method alive

INTERPRETING RESULTS:
- used_in_template: bound in a ZUL template or referenced by a binding expression
- used_in_java: instantiated, called or invoked from Java code
- A method with neither flag is used only if one of its annotations is kept

METRICS RETURNED:
- Per ViewModel: parent class, usage flags, methods with line, command names,
  annotations and usage flags`
}
