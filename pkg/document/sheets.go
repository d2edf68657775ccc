package document

// HTMLSheet is the default style sheet of HTML documents.
const HTMLSheet = `
html, address, blockquote, body, dd, div, dl, dt, fieldset, form,
frame, frameset, h1, h2, h3, h4, h5, h6, noframes, ol, p, ul, center,
dir, hr, menu, pre { display: block }
li { display: list-item }
head, script, style, title, meta, link, base { display: none }
table { display: table; border-spacing: 2px }
tr { display: table-row }
thead { display: table-header-group }
tbody { display: table-row-group }
tfoot { display: table-footer-group }
col { display: table-column }
colgroup { display: table-column-group }
td, th { display: table-cell; padding: 1px; vertical-align: middle }
caption { display: table-caption; text-align: center }
th { font-weight: bold; text-align: center }

body { margin: 8px; line-height: 1.2 }
h1 { font-size: 2em; margin: .67em 0 }
h2 { font-size: 1.5em; margin: .75em 0 }
h3 { font-size: 1.17em; margin: .83em 0 }
h4, p, blockquote, ul, fieldset, form, ol, dl, dir, menu { margin: 1.12em 0 }
h5 { font-size: .83em; margin: 1.5em 0 }
h6 { font-size: .75em; margin: 1.67em 0 }
h1, h2, h3, h4, h5, h6, b, strong { font-weight: bold }
blockquote { margin-left: 40px; margin-right: 40px }
i, cite, em, var, address { font-style: italic }
pre, tt, code, kbd, samp { font-family: monospace }
pre { white-space: pre }
big { font-size: 1.17em }
small, sub, sup { font-size: .83em }
sub { vertical-align: sub }
sup { vertical-align: super }
s, strike, del { text-decoration: line-through }
u, ins { text-decoration: underline }
hr { border: 1px inset; margin: 8px 0 }
ol, ul, dir, menu, dd { padding-left: 40px }
ul, dir, menu { list-style-type: disc }
ol { list-style-type: decimal }
ol, ul, dir, menu { counter-reset: list-item }
ol ul, ul ol, ul ul, ol ol { margin-top: 0; margin-bottom: 0 }
center { text-align: center }
a:link { color: blue; text-decoration: underline }
a:visited { color: purple; text-decoration: underline }
img { border: 0 }
textarea, select, input { border: 1px inset; padding: 0 2px }

@media print {
  a:link, a:visited { color: black }
}
`

// DocBookSheet is the default style sheet of DocBook documents. DocBook is
// parsed with XML rules, so element names are case sensitive.
const DocBookSheet = `
book, article, chapter, preface, appendix, section, sect1, sect2, sect3,
sect4, sect5, simplesect, bookinfo, articleinfo, abstract, para, simpara,
formalpara, blockquote, example, figure, informalexample, sidebar, note,
tip, warning, caution, important, address, literallayout, programlisting,
screen, synopsis, title, subtitle, titleabbrev, author, authorgroup,
itemizedlist, orderedlist, variablelist, varlistentry, glossary,
glossentry, glossdef, bibliography, biblioentry, index, toc, mediaobject,
informaltable, table { display: block }
listitem { display: list-item }
remark, indexterm, comment { display: none }

book, article { margin: 8px; line-height: 1.2 }
para, simpara, formalpara, blockquote, example, informalexample,
literallayout, programlisting, screen, synopsis, note, tip, warning,
caution, important, itemizedlist, orderedlist, variablelist { margin: 1em 0 }
blockquote, note, tip, warning, caution, important, sidebar { margin-left: 40px; margin-right: 40px }
sidebar { border: 1px solid; padding: 4px }

title { font-weight: bold; font-size: 1.5em; margin: .75em 0 }
chapter > title, appendix > title, preface > title { font-size: 2em; margin: .67em 0 }
section section > title, sect2 > title { font-size: 1.17em }
subtitle { font-style: italic; font-size: 1.17em }
author, authorgroup { font-style: italic }

itemizedlist, orderedlist { padding-left: 40px }
itemizedlist { list-style-type: disc }
orderedlist { list-style-type: decimal }
itemizedlist, orderedlist { counter-reset: list-item }
varlistentry > term { font-weight: bold }
listitem > para, listitem > simpara { margin: 0 }
glossterm, firstterm { font-style: italic }

emphasis { font-style: italic }
emphasis[role=bold], emphasis[role=strong] { font-weight: bold; font-style: normal }
literal, command, filename, function, varname, option, parameter, userinput,
computeroutput, replaceable, constant, type, classname, methodname, envar,
programlisting, screen, synopsis, literallayout { font-family: monospace }
programlisting, screen, synopsis, literallayout { white-space: pre }
replaceable { font-style: italic }
ulink, link, xref { color: blue; text-decoration: underline }
superscript { vertical-align: super; font-size: .83em }
subscript { vertical-align: sub; font-size: .83em }
quote:before { content: "\201C" }
quote:after { content: "\201D" }
`
