// Command rulecheck evaluates a book source rule against a local file or a
// fetched page and prints the extracted value(s) as JSON.
//
// Usage:
//
//	rulecheck -file page.html -rule 'class.title@text'
//	rulecheck -file page.html -all -rule '//a/@href' -base https://example.com/ -resolve
//	rulecheck -file toc.html -list '@css:#list dd' -fields 'name=a@text,url=a@href'
//	curl -s https://example.com/api | rulecheck -file - -rule '$.data.name'
//	rulecheck -url 'https://example.com/s,{"method":"POST","body":"q=x"}' -list '.result' -fields 'name=h3@text'
package main
