// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/meta"
)

const bashCompletionScript = `# bash completion for itemctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_itemctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "list get create update delete stats serve completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --schema --tldr --store -S --aws-profile --aws-region"
    local fields="--name -n --category -C --price -p"

    case "$cmd" in
        list)
            local opts="$common --query -q --limit -l"
            ;;
        get|delete|stats)
            local opts="$common"
            ;;
        create)
            local opts="$common $fields"
            ;;
        update)
            local opts="$common $fields --diff"
            ;;
        serve)
            local opts="--addr --cors-origin --cache-ttl --request-timeout --store -S --aws-profile --aws-region --tldr"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--store" || "$prev" == "-S" ]]; then
        COMPREPLY=( $(compgen -f -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _itemctl itemctl
`

const zshCompletionScript = `#compdef itemctl

_itemctl() {
  local -a cmds
  cmds=(
    'list:list items'
    'get:show one item'
    'create:add an item'
    'update:change an item'
    'delete:remove an item'
    'stats:show the item count and average price'
    'serve:serve the item API over HTTP'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '(-S --store)'{-S,--store}'[record store]:store:_files'
  '--aws-profile[shared config profile]:profile'
  '--aws-region[region]:region'
  '--schema[dump schema]'
  '--tldr[show tldr page]'
  )

  local -a fields
  fields=(
  '(-n --name)'{-n,--name}'[item name]:name'
  '(-C --category)'{-C,--category}'[item category]:category'
  '(-p --price)'{-p,--price}'[item price]:price'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'itemctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    list)
      _arguments -C \
        $common \
        '(-q --query)'{-q,--query}'[name contains]:query' \
        '(-l --limit)'{-l,--limit}'[at most this many]:limit'
      ;;
    get|delete)
      _arguments -C $common '1:id'
      ;;
    create)
      _arguments -C $common $fields
      ;;
    update)
      _arguments -C $common $fields '--diff[print a diff]' '1:id'
      ;;
    serve)
      _arguments -C \
        '--addr[listen address]:addr' \
        '--cors-origin[allowed origin]:origin' \
        '--cache-ttl[stats cache ttl]:duration' \
        '--request-timeout[request timeout]:duration' \
        '(-S --store)'{-S,--store}'[record store]:store:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _itemctl itemctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(cmd.Root().ErrWriter, "usage: itemctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "itemctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
