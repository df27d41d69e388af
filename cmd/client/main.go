package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var serverAddr string

func main() {
	rootCmd := &cobra.Command{
		Use:   "notesctl",
		Short: "CLI клиент для сервера заметок",
	}
	rootCmd.PersistentFlags().StringVar(
		&serverAddr, "addr", "http://localhost:8080", "адрес сервера заметок",
	)

	rootCmd.AddCommand(
		newCreateCmd(),
		newGetCmd(),
		newListCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newLogsCmd(),
		newResetCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printJSON печатает значение с отступами для читаемости
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func newCreateCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать новую заметку",
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := newAPIClient(serverAddr).createNote(cmd.Context(), title, content)
			if err != nil {
				return err
			}
			return printJSON(note)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "заголовок заметки")
	cmd.Flags().StringVar(&content, "content", "", "содержание заметки")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Получить заметку по ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := newAPIClient(serverAddr).getNote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(note)
		},
	}
}

func newListCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать все заметки",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := newAPIClient(serverAddr).listNotes(cmd.Context())
			if err != nil {
				return err
			}
			if since > 0 {
				notes, err = notesModifiedSince(notes, time.Now().Add(-since))
				if err != nil {
					return err
				}
			}
			return printJSON(notes)
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "показать только заметки, измененные за последний период (например 1h)")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Частично обновить заметку (изменяются только переданные флаги)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Отличаем "флаг не передан" от "передана пустая строка"
			var titlePtr, contentPtr *string
			if cmd.Flags().Changed("title") {
				titlePtr = &title
			}
			if cmd.Flags().Changed("content") {
				contentPtr = &content
			}

			note, err := newAPIClient(serverAddr).updateNote(cmd.Context(), args[0], titlePtr, contentPtr)
			if err != nil {
				return err
			}
			return printJSON(note)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "новый заголовок заметки")
	cmd.Flags().StringVar(&content, "content", "", "новое содержание заметки")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить заметку по ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient(serverAddr).deleteNote(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}

func newLogsCmd() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Показать журнал действий",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := newAPIClient(serverAddr).listLogs(cmd.Context(), action)
			if err != nil {
				return err
			}
			return printJSON(entries)
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "фильтр по типу действия (created, updated, ...)")

	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Сбросить хранилище и журнал действий",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient(serverAddr).reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("reset done")
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Подписаться на события изменения заметок через WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := eventsURL(serverAddr)
			if err != nil {
				return err
			}

			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
			if err != nil {
				return fmt.Errorf("websocket dial: %w", err)
			}
			defer conn.Close()

			fmt.Println("watching note events, Ctrl+C to stop")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			done := make(chan error, 1)
			go func() {
				for {
					_, message, err := conn.ReadMessage()
					if err != nil {
						done <- err
						return
					}
					fmt.Println(string(message))
				}
			}()

			select {
			case err := <-done:
				return err
			case <-sigChan:
				// Корректно закрываем WebSocket соединение
				_ = conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				return nil
			}
		},
	}
}

// eventsURL строит ws:// URL фида событий из HTTP адреса сервера
func eventsURL(addr string) (string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid server address: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/notes/events"

	return u.String(), nil
}
