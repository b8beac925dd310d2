package help

const ColdstartYAML = `# how-much Quick Start

what_it_does: "Finds prices in HTML pages and shows how long you work to pay for them"

presentation_modes:
  default: "Price stays, cost badge appended: $30 [2h24m]"
  compact: "Price replaced by the cost badge, original kept in data-timecost-price"
  comfortable: "Price stays, cost shown in a tooltip on hover or focus"

output_formats:
  html: "Annotated HTML (default)"
  markdown: "Markdown, costs in parentheses after each price"
  report: "YAML summary of every page and price"

commands:
  first_setup: |
    how-much settings set userCurrency EUR
    how-much settings set userSalary "2.750,00"
    how-much settings set spacingMode compact

  annotate_file: |
    how-much annotate page.html > annotated.html
    how-much annotate --origin https://www.amazon.com/ page.html

  annotate_urls: |
    how-much annotate --urls "https://www.amazon.com/dp/B000,https://www.etsy.com/listing/1"
    how-much annotate --urls "https://www.ebay.com/itm/1" --format markdown --readable

  whitelist: |
    how-much whitelist list
    how-much whitelist add shop.example.com
    how-much whitelist check https://smile.amazon.com/
    how-much whitelist reset

  settings_transfer: |
    how-much settings export --file settings.yaml
    how-much settings import settings.yaml

  history: |
    how-much runs
    how-much runs --domain amazon.com
    how-much runs show 12

  server: |
    how-much serve --addr :8080
    curl -X POST --data-binary @page.html "localhost:8080/annotate?mode=compact"

settings_keys:
  userSalary: "Monthly salary, written the way your currency writes numbers"
  userCurrency: "USD, EUR or BRL"
  spacingMode: "default, compact or comfortable"
  userLanguage: "en, es, pt, fr, de, it, ja or zh"
  workingDaysPerMonth: "1-31, default 22"
  workingHoursPerDay: "1-24, default 8"
  whitelist: "Comma separated domains"

cost_format:
  under_an_hour: "{m}m"
  under_a_day: "{h}h{m}m"
  longer: "{d}d{h}h (days are working days)"

invariants:
  - "Annotating an annotated page changes nothing"
  - "Pages outside the whitelist are left alone unless --all-domains is given"
  - "Local files are only checked against the whitelist when --origin is given"
  - "Exchange rates are static: 1 USD = 0.92 EUR = 5.00 BRL"

error_behavior:
  - "Malformed URLs: fail fast before fetching"
  - "Prices that cannot be read are left untouched"
  - "Exit codes: 0=success, 1=partial failure, 2=complete failure"
`
