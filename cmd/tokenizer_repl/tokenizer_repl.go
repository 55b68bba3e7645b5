package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/wbrown/byte_bpe"
)

// A REPL for interacting with a trained `byte_bpe` tokenizer.

func main() {
	modelOpt := flag.String("model", "tokenizer.model",
		"path to the .model file to load")
	flag.Parse()

	tokenizer, err := byte_bpe.Load(*modelOpt)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("loaded %s: %d ids\n", *modelOpt, tokenizer.VocabSize())

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(">>> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			log.Fatal(err)
		}
		// Remove trailing newline and replace \n with newline.
		input = strings.Replace(input[:len(input)-1], "\\n", "\n", -1)
		encoded, err := tokenizer.Encode(input, byte_bpe.AllowedAll)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(encoded)
		for idx, id := range encoded {
			fmt.Printf("%d: %d = %s\n", idx, id, tokenizer.TokenToString(id))
		}
		decoded, err := tokenizer.Decode(encoded)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Printf("%q\n", decoded)
	}
}
